// Package config loads, normalizes, and validates proxymill configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PROXYMILL_CATALOG. The Config type centralizes every knob the pipeline
// needs: catalog and renderer locations, batching limits, card corrections,
// and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum spellings, and clear validation errors.
// Recoverable problems (an unknown art extension, a malformed override) are
// corrected during normalization and surfaced through Config.Warnings rather
// than failing the load.
package config

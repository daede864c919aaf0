// Package services defines shared utilities consumed by the pipeline
// components.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, pass names, and batch names
//     for logging and the run ledger.
//   - Structured error markers plus the Wrap helper that separate per-card
//     rejections and per-batch failures from errors that end the run.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform.
package services

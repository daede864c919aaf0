// Package logging assembles structured slog loggers and formatting helpers used
// across proxymill.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, rendering passes, and batch names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same shape of data to the console and the log file.
package logging

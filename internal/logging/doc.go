// Package logging assembles structured slog loggers and formatting helpers
// used across cinedex commands.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing so ingestion runs, verification, and CLI commands emit data
// with the same shape. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging

// Package logging assembles structured slog loggers and formatting helpers used
// across songshift.
//
// It owns the configurable console/JSON handlers, an optional JSON log file
// teed alongside the console, and context-aware helpers so pipeline stages
// automatically tag log lines with job IDs and stage names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging

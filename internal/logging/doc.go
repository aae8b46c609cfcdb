// Package logging assembles structured slog loggers and formatting helpers used
// across tapeshelf commands.
//
// It owns the configurable console/JSON handlers, duplicates output into a
// rotated log file, and exposes context-aware helpers so export code can tag
// log lines with the run identifier and policy. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging

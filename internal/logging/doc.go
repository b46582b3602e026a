// Package logging assembles structured slog loggers and formatting helpers used
// across QuickSaver.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and the fetch
// orchestrator automatically tag log lines with correlation and fetch IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging

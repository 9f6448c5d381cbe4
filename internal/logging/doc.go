// Package logging assembles the structured slog loggers used across the
// engine.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine code can tag log lines
// with the segment and day the current operation concerns. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging

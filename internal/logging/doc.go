// Package logging assembles structured slog loggers and formatting helpers used
// across libris.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so HTTP handlers and store operations tag
// log lines with request IDs and record identifiers. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
package logging

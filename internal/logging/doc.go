// Package logging assembles the slog loggers used by the admrender command.
//
// It owns the console and JSON handlers, level parsing and the run_id
// attribute that ties every line of one render invocation together. NewNop
// returns a logger for tests and wiring code that has nothing to report.
package logging

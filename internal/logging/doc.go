// Package logging assembles the structured slog loggers used by tilestats.
//
// It owns the console and JSON handlers, maps configuration level and format
// strings onto slog, and fans output to stderr plus an optional log file. The
// console handler colours level labels only when writing to a terminal.
// NewNop gives tests and optional wiring a logger that discards everything.
package logging

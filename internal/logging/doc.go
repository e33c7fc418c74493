// Package logging assembles the structured slog loggers used by dfhash.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so each file pipeline tags its log
// lines with the run ID and the input path. Diagnostics always go to stderr
// or a file, never stdout, which is reserved for fingerprint lines. The
// package also provides a no-op logger for tests and library callers.
package logging

// Package runner drives a dfhash invocation: it loads every input, hashes or
// compares the tables, and reports results and diagnostics.
//
// Files are processed concurrently but always reported in argument order.
// Run returns the process exit code: ExitOK, ExitMismatch when the inputs
// differ in equality mode (or the invocation is unusable), and ExitError for
// any operational failure.
package runner

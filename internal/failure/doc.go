// Package failure defines the error markers shared by the dfhash pipeline.
//
// Every error that crosses a package boundary is tagged with one of the
// exported sentinels so the orchestrator can classify it (operational failure
// versus data mismatch) with errors.Is, while the underlying cause stays
// available for the message printed to the user.
package failure

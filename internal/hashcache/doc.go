// Package hashcache memoizes file fingerprints in a SQLite database.
//
// Entries are keyed by absolute path and validated against the file's size,
// modification time and, on unix, its device, inode and change time. A
// lookup whose stored identity differs from the file on disk is a miss, so a
// rewritten file is always re-hashed.
//
// Processes hashing with the cache hold a shared advisory lock on a sibling
// ".lock" file; Clear requires the exclusive lock and fails fast with
// ErrLocked while any hashing run is active.
package hashcache

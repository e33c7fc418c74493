// Package fingerprint computes deterministic content fingerprints for typed
// tables.
//
// A fingerprint is the lowercase hex SHA-256 digest of a table's canonical
// serialization. Table sorts the input and streams the serializer straight
// into the digest, so only the sorted row index is held in memory on top of
// the table itself.
//
// Primary entry points:
//   - Table: canonicalizes and hashes a table in one pass
//   - Hash: hashes an arbitrary canonical byte stream
//   - Sum: hashes an in-memory canonical buffer
package fingerprint

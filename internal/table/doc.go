// Package table defines the in-memory typed table every loader produces and
// every canonicalization step consumes.
//
// A Table is row-major: an ordered Schema plus a slice of Rows, each holding
// exactly one Value per column. Column position is identity; names are
// informational and need not be unique. Tables are treated as immutable once
// built, so the same instance can be compared against many others without
// copying.
package table

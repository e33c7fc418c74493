package canonical

import (
	"context"
	"fmt"

	"dfhash/internal/failure"
	"dfhash/internal/table"
)

// CompareSchemas returns an error wrapping failure.ErrSchemaMismatch when the
// schemas differ in names, order or types.
func CompareSchemas(a, b table.Schema) error {
	if a.Equal(b) {
		return nil
	}
	return failure.Wrap(failure.ErrSchemaMismatch, "", fmt.Sprintf("%s vs %s", a, b), nil)
}

// EqualSorted reports whether two canonically sorted tables hold the same
// rows with the same multiplicity.
func EqualSorted(a, b *table.Table) bool {
	if !a.Schema.Equal(b.Schema) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		if CompareRows(a.Rows[i], b.Rows[i]) != 0 {
			return false
		}
	}
	return true
}

// Equal sorts both tables and compares them row by row. A schema mismatch
// yields false together with an error wrapping failure.ErrSchemaMismatch;
// callers treat that as "not equal". Any other error means the tables could
// not be compared.
func Equal(ctx context.Context, a, b *table.Table, opts ...Option) (bool, error) {
	if a == nil || b == nil {
		return false, failure.Wrap(failure.ErrIncomparable, "", "nil table", nil)
	}
	if err := CompareSchemas(a.Schema, b.Schema); err != nil {
		return false, err
	}
	if len(a.Rows) != len(b.Rows) {
		return false, nil
	}
	sortedA, err := Sort(ctx, a, opts...)
	if err != nil {
		return false, err
	}
	sortedB, err := Sort(ctx, b, opts...)
	if err != nil {
		return false, err
	}
	return EqualSorted(sortedA, sortedB), nil
}

package table

import (
	"errors"
	"fmt"

	"dfhash/internal/failure"
)

// Table is a typed, row-major dataset.
type Table struct {
	Schema Schema
	Rows   []Row
}

// New returns an empty table with the given schema.
func New(schema Schema) *Table {
	return &Table{Schema: schema}
}

// Append adds a row. It does not validate; call Validate once the table is
// complete.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the schema width.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Schema)
}

// WithRows returns a new table that shares t's schema and holds a fresh copy
// of the row slice. Row contents are shared, not cloned.
func (t *Table) WithRows(rows []Row) *Table {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Table{Schema: t.Schema, Rows: cp}
}

// Validate checks the table invariants: every row has exactly one value per
// column and every present value carries its column's type. A null column
// holds only missing values.
func (t *Table) Validate() error {
	if t == nil {
		return failure.Wrap(failure.ErrIncomparable, "", "nil table", nil)
	}
	for i, col := range t.Schema {
		if !col.Type.Valid() {
			return failure.Wrap(failure.ErrIncomparable, "", fmt.Sprintf("column %d (%s)", i, col.Name), fmt.Errorf("unsupported column type %s", col.Type))
		}
	}
	width := len(t.Schema)
	for r, row := range t.Rows {
		if len(row) != width {
			return failure.Wrap(failure.ErrIncomparable, "", fmt.Sprintf("row %d", r), fmt.Errorf("has %d values, schema has %d columns", len(row), width))
		}
		for c, value := range row {
			if !value.Valid {
				continue
			}
			if value.Type == TypeNull {
				return failure.Wrap(failure.ErrIncomparable, "", fmt.Sprintf("row %d column %d (%s)", r, c, t.Schema[c].Name), errors.New("present value of type null"))
			}
			if value.Type != t.Schema[c].Type {
				return failure.Wrap(failure.ErrIncomparable, "", fmt.Sprintf("row %d column %d (%s)", r, c, t.Schema[c].Name), fmt.Errorf("value of type %s in %s column", value.Type, t.Schema[c].Type))
			}
		}
	}
	return nil
}

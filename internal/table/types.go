package table

import (
	"fmt"
	"strings"
)

// ColumnType is the logical type of every present value in a column.
type ColumnType int

const (
	// TypeNull marks a column that holds no present values at all.
	TypeNull ColumnType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeString
)

var columnTypeTokens = map[ColumnType]string{
	TypeNull:    "null",
	TypeInteger: "int64",
	TypeFloat:   "float64",
	TypeBoolean: "bool",
	TypeString:  "string",
}

// String returns the stable token used in canonical output.
func (t ColumnType) String() string {
	if token, ok := columnTypeTokens[t]; ok {
		return token
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// Valid reports whether t is one of the declared column types.
func (t ColumnType) Valid() bool {
	_, ok := columnTypeTokens[t]
	return ok
}

// ParseColumnType maps a token (as produced by String) back to a ColumnType.
func ParseColumnType(token string) (ColumnType, error) {
	needle := strings.ToLower(strings.TrimSpace(token))
	for t, name := range columnTypeTokens {
		if name == needle {
			return t, nil
		}
	}
	return TypeNull, fmt.Errorf("unknown column type %q", token)
}

// Column describes a single schema entry.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is the ordered list of columns of a table.
type Schema []Column

// Equal reports whether both schemas list the same names and types in the
// same order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}

// String renders the schema as name:type pairs, mostly for diagnostics.
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, col := range s {
		parts[i] = col.Name + ":" + col.Type.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

package table

import (
	"fmt"
	"strconv"
)

// Value is a single cell. Only the payload field matching Type is meaningful;
// a Value with Valid == false is a null regardless of Type.
type Value struct {
	Type  ColumnType
	Valid bool

	I64 int64
	F64 float64
	B   bool
	S   string
}

// Row holds one Value per schema column.
type Row []Value

// Null returns a missing value.
func Null() Value { return Value{} }

// Int returns a present integer value.
func Int(v int64) Value { return Value{Type: TypeInteger, Valid: true, I64: v} }

// Float returns a present float value.
func Float(v float64) Value { return Value{Type: TypeFloat, Valid: true, F64: v} }

// Bool returns a present boolean value.
func Bool(v bool) Value { return Value{Type: TypeBoolean, Valid: true, B: v} }

// String returns a present string value.
func String(v string) Value { return Value{Type: TypeString, Valid: true, S: v} }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return !v.Valid }

// GoString renders the value for test failure messages.
func (v Value) GoString() string {
	if !v.Valid {
		return "null"
	}
	switch v.Type {
	case TypeInteger:
		return strconv.FormatInt(v.I64, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.B)
	case TypeString:
		return strconv.Quote(v.S)
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}

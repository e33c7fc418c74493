package canonical

import (
	"math"
	"strings"

	"dfhash/internal/table"
)

// CompareRows orders two rows of the same schema lexicographically across
// all columns. Both rows must satisfy the table invariants.
func CompareRows(a, b table.Row) int {
	for i := range a {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// CompareValues orders two values drawn from the same column.
func CompareValues(a, b table.Value) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	switch a.Type {
	case table.TypeInteger:
		return compareInts(a.I64, b.I64)
	case table.TypeFloat:
		return compareFloats(a.F64, b.F64)
	case table.TypeBoolean:
		return compareBools(a.B, b.B)
	case table.TypeString:
		return strings.Compare(a.S, b.S)
	default:
		return 0
	}
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareFloats places NaN after every number; -0 and +0 compare equal.
func compareFloats(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

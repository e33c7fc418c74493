package canonical

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"dfhash/internal/failure"
	"dfhash/internal/table"
)

const (
	delimiter      = ','
	quote          = '"'
	lineTerminator = '\n'

	// NullToken renders a missing value. Strings equal to it are quoted.
	NullToken = `\N`

	nanToken    = "NaN"
	posInfToken = "inf"
	negInfToken = "-inf"
)

// Serialize renders t into its canonical byte sequence. t is rendered in its
// current row order; callers sort first.
func Serialize(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := WriteTo(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo streams the canonical rendering of t to w: a header line with the
// column names, a line with the column type tokens, then one line per row.
func WriteTo(w io.Writer, t *table.Table) (int64, error) {
	if t == nil {
		return 0, failure.Wrap(failure.ErrSerialization, "", "nil table", nil)
	}
	cw := &countingWriter{w: w}
	bw := bufio.NewWriterSize(cw, 64*1024)

	line := make([]byte, 0, 256)
	var err error
	for i, col := range t.Schema {
		if i > 0 {
			line = append(line, delimiter)
		}
		if line, err = appendString(line, col.Name); err != nil {
			return cw.n, failure.Wrap(failure.ErrSerialization, "", fmt.Sprintf("header column %d", i), err)
		}
	}
	line = append(line, lineTerminator)
	for i, col := range t.Schema {
		if i > 0 {
			line = append(line, delimiter)
		}
		line = append(line, col.Type.String()...)
	}
	line = append(line, lineTerminator)
	if _, err := bw.Write(line); err != nil {
		return cw.n, failure.Wrap(failure.ErrSerialization, "", "write header", err)
	}

	width := len(t.Schema)
	for r, row := range t.Rows {
		if len(row) != width {
			return cw.n, failure.Wrap(failure.ErrSerialization, "", fmt.Sprintf("row %d", r), fmt.Errorf("has %d values, schema has %d columns", len(row), width))
		}
		line = line[:0]
		for c, value := range row {
			if c > 0 {
				line = append(line, delimiter)
			}
			if line, err = appendValue(line, t.Schema[c].Type, value); err != nil {
				return cw.n, failure.Wrap(failure.ErrSerialization, "", fmt.Sprintf("row %d column %d (%s)", r, c, t.Schema[c].Name), err)
			}
		}
		line = append(line, lineTerminator)
		if _, err := bw.Write(line); err != nil {
			return cw.n, failure.Wrap(failure.ErrSerialization, "", fmt.Sprintf("write row %d", r), err)
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, failure.Wrap(failure.ErrSerialization, "", "flush", err)
	}
	return cw.n, nil
}

func appendValue(dst []byte, colType table.ColumnType, v table.Value) ([]byte, error) {
	if !v.Valid {
		return append(dst, NullToken...), nil
	}
	if v.Type != colType {
		return dst, fmt.Errorf("value of type %s in %s column", v.Type, colType)
	}
	switch v.Type {
	case table.TypeInteger:
		return strconv.AppendInt(dst, v.I64, 10), nil
	case table.TypeFloat:
		return appendFloat(dst, v.F64), nil
	case table.TypeBoolean:
		return strconv.AppendBool(dst, v.B), nil
	case table.TypeString:
		return appendString(dst, v.S)
	default:
		return dst, fmt.Errorf("cannot render value of type %s", v.Type)
	}
}

// appendFloat writes the shortest decimal that round-trips to f. The result
// always carries a decimal point or exponent so 1.0 never renders as 1.
func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, nanToken...)
	case math.IsInf(f, 1):
		return append(dst, posInfToken...)
	case math.IsInf(f, -1):
		return append(dst, negInfToken...)
	case f == 0:
		return append(dst, "0.0"...)
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'g', -1, 64)
	if !bytes.ContainsAny(dst[start:], ".e") {
		dst = append(dst, ".0"...)
	}
	return dst
}

func appendString(dst []byte, s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return dst, fmt.Errorf("string %q is not valid UTF-8", s)
	}
	if !needsQuoting(s) {
		return append(dst, s...), nil
	}
	dst = append(dst, quote)
	for i := 0; i < len(s); i++ {
		if s[i] == quote {
			dst = append(dst, quote)
		}
		dst = append(dst, s[i])
	}
	return append(dst, quote), nil
}

func needsQuoting(s string) bool {
	return s == "" || s == NullToken || strings.ContainsAny(s, ",\"\r\n")
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dfhash/internal/table"
)

const cancelCheckInterval = 4096

// readDelimited parses delimited text and resolves one type per column.
func readDelimited(ctx context.Context, r io.Reader, opts Options) (*table.Table, error) {
	decoded, err := decodeCharset(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	counter := &newlineCounter{r: decoded}
	reader := csv.NewReader(counter)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = true

	var (
		names   []string
		columns [][]string
		rows    int
		// lastLine is the line on which the previous record ended.
		lastLine int
	)
	// encoding/csv skips empty lines. In a single-column file an empty line
	// is an empty cell, so skipped lines are restored from line positions.
	blanks := func(n int) {
		for range n {
			columns[0] = append(columns[0], "")
			rows++
		}
	}
	for {
		if rows%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse delimited text: %w", err)
		}
		line, _ := reader.FieldPos(0)
		gap := line - lastLine - 1
		lastLine = line + strings.Count(record[0], "\n")
		if names == nil {
			if opts.HasHeader {
				names = append([]string(nil), record...)
				columns = make([][]string, len(names))
				continue
			}
			names = generatedNames(len(record))
			columns = make([][]string, len(names))
		}
		if len(names) == 1 && gap > 0 {
			blanks(gap)
		}
		for i, cell := range record {
			columns[i] = append(columns[i], cell)
		}
		rows++
	}
	if names == nil {
		return nil, errors.New("no header or data rows")
	}
	if len(names) == 1 && counter.lines > lastLine {
		blanks(counter.lines - lastLine)
	}

	nulls := make(map[string]struct{}, len(opts.NullValues))
	for _, v := range opts.NullValues {
		nulls[v] = struct{}{}
	}

	schema := make(table.Schema, len(names))
	values := make([][]table.Value, len(names))
	for i, name := range names {
		typ, cells, err := resolveColumn(columns[i], nulls)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, name, err)
		}
		schema[i] = table.Column{Name: name, Type: typ}
		values[i] = cells
		columns[i] = nil
	}

	tbl := &table.Table{Schema: schema, Rows: make([]table.Row, rows)}
	for r := range tbl.Rows {
		row := make(table.Row, len(schema))
		for c := range schema {
			row[c] = values[c][r]
		}
		tbl.Rows[r] = row
	}
	return tbl, nil
}

// newlineCounter counts the line feeds read through it.
type newlineCounter struct {
	r     io.Reader
	lines int
}

func (c *newlineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.lines += bytes.Count(p[:n], []byte{'\n'})
	return n, err
}

func generatedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "column_" + strconv.Itoa(i+1)
	}
	return names
}

// resolveColumn picks the narrowest type holding every present cell and
// converts the cells to values of that type.
func resolveColumn(cells []string, nulls map[string]struct{}) (table.ColumnType, []table.Value, error) {
	present := func(s string) bool {
		_, isNull := nulls[s]
		return !isNull
	}

	typ := table.TypeNull
	for _, cell := range cells {
		if present(cell) {
			typ = table.TypeString
			break
		}
	}
	if typ == table.TypeString {
		for _, candidate := range []table.ColumnType{table.TypeInteger, table.TypeFloat, table.TypeBoolean} {
			if allParse(candidate, cells, present) {
				typ = candidate
				break
			}
		}
	}

	out := make([]table.Value, len(cells))
	for i, cell := range cells {
		if !present(cell) {
			continue
		}
		v, err := convert(typ, cell)
		if err != nil {
			return typ, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = v
	}
	return typ, out, nil
}

func allParse(typ table.ColumnType, cells []string, present func(string) bool) bool {
	for _, cell := range cells {
		if present(cell) && !parses(typ, cell) {
			return false
		}
	}
	return true
}

func parses(typ table.ColumnType, s string) bool {
	switch typ {
	case table.TypeInteger:
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	case table.TypeFloat:
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case table.TypeBoolean:
		return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
	default:
		return true
	}
}

func convert(typ table.ColumnType, s string) (table.Value, error) {
	switch typ {
	case table.TypeInteger:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return table.Value{}, err
		}
		return table.Int(v), nil
	case table.TypeFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return table.Value{}, err
		}
		return table.Float(v), nil
	case table.TypeBoolean:
		return table.Bool(strings.EqualFold(s, "true")), nil
	case table.TypeString:
		return table.String(s), nil
	default:
		return table.Value{}, fmt.Errorf("cannot convert %q to %s", s, typ)
	}
}

package loader

import (
	"context"
	"fmt"
	"math"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/apache/arrow/go/v7/parquet"
	"github.com/apache/arrow/go/v7/parquet/pqarrow"

	"dfhash/internal/table"
)

const parquetBatchRows = 64 * 1024

// readParquet reads a whole Parquet file and converts it to a row-major
// table.
func readParquet(ctx context.Context, r parquet.ReaderAtSeeker) (*table.Table, error) {
	mem := memory.NewGoAllocator()
	arrowTable, err := pqarrow.ReadTable(ctx, r, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer arrowTable.Release()

	fields := arrowTable.Schema().Fields()
	schema := make(table.Schema, len(fields))
	for i, field := range fields {
		typ, err := columnTypeOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, field.Name, err)
		}
		schema[i] = table.Column{Name: field.Name, Type: typ}
	}

	rows := make([]table.Row, arrowTable.NumRows())
	for i := range rows {
		rows[i] = make(table.Row, len(schema))
	}

	reader := array.NewTableReader(arrowTable, parquetBatchRows)
	defer reader.Release()

	offset := 0
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := reader.Record()
		n := int(record.NumRows())
		for c := range schema {
			if err := fillColumn(rows[offset:offset+n], c, record.Column(c)); err != nil {
				return nil, fmt.Errorf("column %d (%s): %w", c, schema[c].Name, err)
			}
		}
		offset += n
	}
	return &table.Table{Schema: schema, Rows: rows}, nil
}

func columnTypeOf(dt arrow.DataType) (table.ColumnType, error) {
	switch dt.ID() {
	case arrow.NULL:
		return table.TypeNull, nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return table.TypeInteger, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return table.TypeFloat, nil
	case arrow.BOOL:
		return table.TypeBoolean, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return table.TypeString, nil
	default:
		return table.TypeNull, fmt.Errorf("unsupported parquet column type %s", dt)
	}
}

type nullable interface {
	IsNull(int) bool
	Len() int
}

func fillColumn(rows []table.Row, col int, arr arrow.Array) error {
	switch a := arr.(type) {
	case *array.Null:
		return nil
	case *array.Int8:
		fillInts[int8](rows, col, a)
	case *array.Int16:
		fillInts[int16](rows, col, a)
	case *array.Int32:
		fillInts[int32](rows, col, a)
	case *array.Int64:
		fillInts[int64](rows, col, a)
	case *array.Uint8:
		fillInts[uint8](rows, col, a)
	case *array.Uint16:
		fillInts[uint16](rows, col, a)
	case *array.Uint32:
		fillInts[uint32](rows, col, a)
	case *array.Uint64:
		for i := range rows {
			if a.IsNull(i) {
				continue
			}
			v := a.Value(i)
			if v > math.MaxInt64 {
				return fmt.Errorf("row %d: value %d overflows int64", i, v)
			}
			rows[i][col] = table.Int(int64(v))
		}
	case *array.Float32:
		for i := range rows {
			if !a.IsNull(i) {
				rows[i][col] = table.Float(float64(a.Value(i)))
			}
		}
	case *array.Float64:
		for i := range rows {
			if !a.IsNull(i) {
				rows[i][col] = table.Float(a.Value(i))
			}
		}
	case *array.Boolean:
		for i := range rows {
			if !a.IsNull(i) {
				rows[i][col] = table.Bool(a.Value(i))
			}
		}
	case interface {
		nullable
		Value(int) string
	}:
		for i := range rows {
			if !a.IsNull(i) {
				rows[i][col] = table.String(a.Value(i))
			}
		}
	default:
		return fmt.Errorf("unsupported arrow array %T", arr)
	}
	return nil
}

func fillInts[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32](rows []table.Row, col int, a interface {
	nullable
	Value(int) T
}) {
	for i := range rows {
		if !a.IsNull(i) {
			rows[i][col] = table.Int(int64(a.Value(i)))
		}
	}
}

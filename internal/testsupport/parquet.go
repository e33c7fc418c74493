package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/apache/arrow/go/v7/parquet"
	"github.com/apache/arrow/go/v7/parquet/pqarrow"

	"dfhash/internal/table"
)

// WriteParquet encodes tbl as a Parquet file under dir and returns its path.
// Null-typed columns are written as nullable strings holding only nulls.
func WriteParquet(t testing.TB, dir, name string, tbl *table.Table) string {
	t.Helper()

	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, len(tbl.Schema))
	for i, col := range tbl.Schema {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowType(col.Type), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for c, col := range tbl.Schema {
		for _, row := range tbl.Rows {
			appendValue(builder.Field(c), col.Type, row[c])
		}
	}
	record := builder.NewRecord()
	defer record.Release()

	arrowTable := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer arrowTable.Release()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	chunk := int64(len(tbl.Rows))
	if chunk == 0 {
		chunk = 1
	}
	if err := pqarrow.WriteTable(arrowTable, f, chunk, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		t.Fatalf("write parquet %s: %v", path, err)
	}
	return path
}

func arrowType(typ table.ColumnType) arrow.DataType {
	switch typ {
	case table.TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case table.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case table.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, typ table.ColumnType, v table.Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	switch typ {
	case table.TypeInteger:
		b.(*array.Int64Builder).Append(v.I64)
	case table.TypeFloat:
		b.(*array.Float64Builder).Append(v.F64)
	case table.TypeBoolean:
		b.(*array.BooleanBuilder).Append(v.B)
	default:
		b.(*array.StringBuilder).Append(v.S)
	}
}

package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bertiewooster/polars/internal/testutil"
	"github.com/bertiewooster/polars/pkg/datatype"
)

// DuckDB allows only one open handle per database file, so these tests
// close the sink before reopening the file for verification.
func openDuckDBSink(t *testing.T) (*DuckDBSink, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.duckdb")
	sink, err := NewDuckDBSink(path, testutil.NewTestLogger(t))
	require.NoError(t, err, "unexpected open error")
	return sink, path
}

func TestDuckDBSink_WriteAndReadBack(t *testing.T) {
	sink, path := openDuckDBSink(t)
	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))
	require.NoError(t, sink.Close())

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT "id", "label", "score" FROM "sample" ORDER BY "id"`)
	require.NoError(t, err, "table should be queryable")
	defer func() { _ = rows.Close() }()

	type record struct {
		id    int64
		label string
		score sql.NullFloat64
	}
	var got []record
	for rows.Next() {
		var r record
		require.NoError(t, rows.Scan(&r.id, &r.label, &r.score))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 2)
	assert.Equal(t, record{id: 1, label: "plain"}, got[0], "null score should scan as invalid")
	assert.Equal(t, record{id: 2, label: `quote"me`, score: sql.NullFloat64{Float64: 2.5, Valid: true}}, got[1])
}

func TestDuckDBSink_ReplacesTable(t *testing.T) {
	sink, path := openDuckDBSink(t)
	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))
	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))
	require.NoError(t, sink.Close())

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "sample"`).Scan(&count))
	assert.Equal(t, 2, count, "rewriting a table should not duplicate rows")
}

func TestDuckDBSink_InMemory(t *testing.T) {
	sink, err := NewDuckDBSink(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))
	require.NoError(t, sink.Write(context.Background(), "empty", testFrame(t).Head(0)))
}

func TestDuckDBType(t *testing.T) {
	tests := []struct {
		dtype datatype.DType
		want  string
	}{
		{datatype.Boolean, "BOOLEAN"},
		{datatype.Int8, "TINYINT"},
		{datatype.Int16, "SMALLINT"},
		{datatype.Int32, "INTEGER"},
		{datatype.Int64, "BIGINT"},
		{datatype.UInt8, "UTINYINT"},
		{datatype.UInt16, "USMALLINT"},
		{datatype.UInt32, "UINTEGER"},
		{datatype.UInt64, "UBIGINT"},
		{datatype.Float32, "REAL"},
		{datatype.Float64, "DOUBLE"},
		{datatype.Date, "DATE"},
		{datatype.Time, "TIME"},
		{datatype.Datetime, "TIMESTAMP"},
		{datatype.Duration, "BIGINT"},
		{datatype.Utf8, "VARCHAR"},
		{datatype.Categorical, "VARCHAR"},
	}

	for _, tt := range tests {
		t.Run(tt.dtype.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, duckdbType(tt.dtype))
		})
	}
}

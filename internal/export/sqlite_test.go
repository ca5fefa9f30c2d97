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

func openSQLiteSink(t *testing.T) (*SQLiteSink, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.db")
	sink, err := NewSQLiteSink(path, testutil.NewTestLogger(t))
	require.NoError(t, err, "unexpected open error")
	t.Cleanup(func() { _ = sink.Close() })
	return sink, path
}

func TestSQLiteSink_WriteAndReadBack(t *testing.T) {
	sink, path := openSQLiteSink(t)
	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))

	db, err := sql.Open("sqlite", path)
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

func TestSQLiteSink_ReplacesTable(t *testing.T) {
	sink, path := openSQLiteSink(t)
	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))
	require.NoError(t, sink.Write(context.Background(), "sample", testFrame(t)))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "sample"`).Scan(&count))
	assert.Equal(t, 2, count, "rewriting a table should not duplicate rows")
}

func TestSQLiteSink_EmptyFrame(t *testing.T) {
	sink, path := openSQLiteSink(t)

	f := testFrame(t).Head(0)
	require.NoError(t, sink.Write(context.Background(), "empty", f))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "empty"`).Scan(&count))
	assert.Equal(t, 0, count, "empty frames should still create their table")
}

func TestSQLiteType(t *testing.T) {
	tests := []struct {
		dtype datatype.DType
		want  string
	}{
		{datatype.Boolean, "INTEGER"},
		{datatype.Int8, "INTEGER"},
		{datatype.UInt64, "INTEGER"},
		{datatype.Duration, "INTEGER"},
		{datatype.Float32, "REAL"},
		{datatype.Float64, "REAL"},
		{datatype.Utf8, "TEXT"},
		{datatype.Categorical, "TEXT"},
		{datatype.Date, "TEXT"},
		{datatype.Time, "TEXT"},
		{datatype.Datetime, "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.dtype.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteType(tt.dtype))
		})
	}
}

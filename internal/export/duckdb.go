package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/frame"
)

// DuckDBSink writes each frame to its own table in one DuckDB database.
// An existing table with the same name is replaced. Use ":memory:" as the
// path for an in-memory database.
type DuckDBSink struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDuckDBSink opens (or creates) the database file at path.
func NewDuckDBSink(path string, logger *slog.Logger) (*DuckDBSink, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("export: failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("export: failed to ping database %s: %w", path, err)
	}
	return &DuckDBSink{db: db, log: logger}, nil
}

func (s *DuckDBSink) Write(ctx context.Context, name string, f *frame.Frame) error {
	schema := f.Schema()
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("export: failed to drop table %s: %w", name, err)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(name, schema, duckdbType)); err != nil {
		return fmt.Errorf("export: failed to create table %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(name, schema, questionMark))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("export: failed to prepare insert for %s: %w", name, err)
	}
	for _, row := range f.Rows() {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = bindValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("export: failed to insert into %s: %w", name, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("export: failed to close insert for %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: failed to commit %s: %w", name, err)
	}
	s.log.Debug("wrote table", "table", name, "rows", f.NumRows(), "columns", f.NumCols())
	return nil
}

func (s *DuckDBSink) Close() error { return s.db.Close() }

// duckdbType maps a dtype onto a DuckDB column type. DuckDB carries native
// unsigned integer types, so the unsigned dtypes keep their full range.
func duckdbType(dt datatype.DType) string {
	switch dt.Kind {
	case datatype.KindBoolean:
		return "BOOLEAN"
	case datatype.KindInt8:
		return "TINYINT"
	case datatype.KindInt16:
		return "SMALLINT"
	case datatype.KindInt32:
		return "INTEGER"
	case datatype.KindInt64, datatype.KindDuration:
		return "BIGINT"
	case datatype.KindUInt8:
		return "UTINYINT"
	case datatype.KindUInt16:
		return "USMALLINT"
	case datatype.KindUInt32:
		return "UINTEGER"
	case datatype.KindUInt64:
		return "UBIGINT"
	case datatype.KindFloat32:
		return "REAL"
	case datatype.KindFloat64:
		return "DOUBLE"
	case datatype.KindDate:
		return "DATE"
	case datatype.KindTime:
		return "TIME"
	case datatype.KindDatetime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

var _ Sink = (*DuckDBSink)(nil)

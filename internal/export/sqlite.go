package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/frame"
)

// SQLiteSink writes each frame to its own table in one SQLite database.
// An existing table with the same name is replaced.
type SQLiteSink struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteSink opens (or creates) the database file at path.
func NewSQLiteSink(path string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("export: failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("export: failed to ping database %s: %w", path, err)
	}
	return &SQLiteSink{db: db, log: logger}, nil
}

func (s *SQLiteSink) Write(ctx context.Context, name string, f *frame.Frame) error {
	schema := f.Schema()
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("export: failed to drop table %s: %w", name, err)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(name, schema, sqliteType)); err != nil {
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

func (s *SQLiteSink) Close() error { return s.db.Close() }

func questionMark(int) string { return "?" }

// sqliteType maps a dtype onto a SQLite column affinity. Temporal values are
// stored as text in their canonical string forms.
func sqliteType(dt datatype.DType) string {
	switch dt.Kind {
	case datatype.KindBoolean,
		datatype.KindInt8, datatype.KindInt16, datatype.KindInt32, datatype.KindInt64,
		datatype.KindUInt8, datatype.KindUInt16, datatype.KindUInt32, datatype.KindUInt64,
		datatype.KindDuration:
		return "INTEGER"
	case datatype.KindFloat32, datatype.KindFloat64:
		return "REAL"
	default:
		return "TEXT"
	}
}

var _ Sink = (*SQLiteSink)(nil)

package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/frame"
)

// PostgresConfig holds the connection settings for a Postgres sink.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// Options supplies "sslmode", which defaults to "disable".
	Options map[string]string
}

// PostgresSink writes each frame to its own table in a Postgres database.
// An existing table with the same name is replaced.
type PostgresSink struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresSink connects to Postgres and verifies the connection.
func NewPostgresSink(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dsn := buildPostgresDSN(cfg)

	logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("export: failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("export: failed to ping postgres: %w", err)
	}
	return &PostgresSink{db: db, log: logger}, nil
}

// buildPostgresDSN constructs a key=value connection string.
func buildPostgresDSN(cfg PostgresConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

func (s *PostgresSink) Write(ctx context.Context, name string, f *frame.Frame) error {
	schema := f.Schema()
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("export: failed to drop table %s: %w", name, err)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(name, schema, postgresType)); err != nil {
		return fmt.Errorf("export: failed to create table %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(name, schema, dollarMark))
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

func (s *PostgresSink) Close() error { return s.db.Close() }

func dollarMark(i int) string { return fmt.Sprintf("$%d", i+1) }

// postgresType maps a dtype onto a Postgres column type.
func postgresType(dt datatype.DType) string {
	switch dt.Kind {
	case datatype.KindBoolean:
		return "BOOLEAN"
	case datatype.KindInt8, datatype.KindInt16:
		return "SMALLINT"
	case datatype.KindInt32, datatype.KindUInt8, datatype.KindUInt16:
		return "INTEGER"
	case datatype.KindInt64, datatype.KindUInt32, datatype.KindDuration:
		return "BIGINT"
	case datatype.KindUInt64:
		return "NUMERIC"
	case datatype.KindFloat32:
		return "REAL"
	case datatype.KindFloat64:
		return "DOUBLE PRECISION"
	case datatype.KindDate:
		return "DATE"
	case datatype.KindTime:
		return "TIME"
	case datatype.KindDatetime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

var _ Sink = (*PostgresSink)(nil)

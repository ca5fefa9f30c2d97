package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bertiewooster/polars/internal/export"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	To       string
	Count    int
	Parallel int
	Database string

	PGHost     string
	PGPort     int
	PGDatabase string
	PGUser     string
	PGPassword string
	PGSSLMode  string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Draw frames and write them to an external store",
		Long: `Draw a batch of frames from the active generation profile and export them.

Each frame lands under its own name: one CSV file per frame in the output
directory, or one table per frame in a SQLite, DuckDB, or Postgres
database. Seeds advance by one per frame, so a whole batch is reproducible
from its base seed.`,
		Example: `  # Ten CSV files in the output directory
  polars export --count 10

  # One SQLite database with four tables
  polars export --to sqlite --count 4

  # A DuckDB database, with native unsigned column types
  polars export --to duckdb --count 4

  # Into Postgres
  polars export --to postgres --pg-database scratch --count 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", opts.Count)
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sink, err := newSink(cmd, cc, opts)
			if err != nil {
				return err
			}
			defer func() { _ = sink.Close() }()

			jobs, err := buildJobs(cc, opts.Count, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := export.Run(cmd.Context(), sink, jobs, opts.Parallel, cc.Logger); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d frames (base seed %d)\n", opts.Count, jobs[0].Seed)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "csv", "Export target (csv|sqlite|duckdb|postgres)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "Number of frames to draw")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 4, "Concurrent draw jobs")
	cmd.Flags().StringVar(&opts.Database, "db", "", "Database file for sqlite and duckdb targets (default: under out_dir)")
	cmd.Flags().StringVar(&opts.PGHost, "pg-host", "", "Postgres host (default: localhost)")
	cmd.Flags().IntVar(&opts.PGPort, "pg-port", 0, "Postgres port (default: 5432)")
	cmd.Flags().StringVar(&opts.PGDatabase, "pg-database", "", "Postgres database name")
	cmd.Flags().StringVar(&opts.PGUser, "pg-user", "", "Postgres user")
	cmd.Flags().StringVar(&opts.PGPassword, "pg-password", "", "Postgres password")
	cmd.Flags().StringVar(&opts.PGSSLMode, "pg-sslmode", "disable", "Postgres sslmode")
	addGenerationFlags(cmd)

	return cmd
}

// newSink builds the export sink for the requested target.
func newSink(cmd *cobra.Command, cc *CommandContext, opts *ExportOptions) (export.Sink, error) {
	switch opts.To {
	case "csv":
		return export.NewCSVSink(cc.Cfg.OutDir, cc.Logger)
	case "sqlite":
		path, err := databasePath(cc, opts, "frames.db")
		if err != nil {
			return nil, err
		}
		return export.NewSQLiteSink(path, cc.Logger)
	case "duckdb":
		path, err := databasePath(cc, opts, "frames.duckdb")
		if err != nil {
			return nil, err
		}
		return export.NewDuckDBSink(path, cc.Logger)
	case "postgres":
		return export.NewPostgresSink(cmd.Context(), export.PostgresConfig{
			Host:     opts.PGHost,
			Port:     opts.PGPort,
			Database: opts.PGDatabase,
			User:     opts.PGUser,
			Password: opts.PGPassword,
			Options:  map[string]string{"sslmode": opts.PGSSLMode},
		}, cc.Logger)
	default:
		return nil, fmt.Errorf("unknown export target %q (want csv, sqlite, duckdb, or postgres)", opts.To)
	}
}

// databasePath resolves the file path for an embedded database target.
func databasePath(cc *CommandContext, opts *ExportOptions, filename string) (string, error) {
	if opts.Database != "" {
		return opts.Database, nil
	}
	if err := os.MkdirAll(cc.Cfg.OutDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(cc.Cfg.OutDir, filename), nil
}

// buildJobs expands the active profile into one job per frame. Jobs share
// the failure corpus but each runs its own generator.
func buildJobs(cc *CommandContext, count int, reproTo io.Writer) ([]export.Job, error) {
	spec, err := cc.Cfg.Generate.FrameSpec()
	if err != nil {
		return nil, err
	}
	spec.Logger = cc.Logger
	spec.ReproTo = reproTo
	spec.Failures = cc.Corpus

	baseSeed := cc.Cfg.Seed
	if baseSeed == 0 {
		baseSeed = uint64(time.Now().UnixNano())
	}

	jobs := make([]export.Job, count)
	for i := range jobs {
		jobs[i] = export.Job{
			Name: fmt.Sprintf("frame_%03d", i),
			Spec: spec,
			Seed: baseSeed + uint64(i),
		}
	}
	return jobs, nil
}

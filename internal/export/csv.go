package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bertiewooster/polars/pkg/frame"
)

// CSVSink writes each frame to <dir>/<name>.csv.
type CSVSink struct {
	dir string
	log *slog.Logger
}

// NewCSVSink creates the output directory if needed and returns a sink
// writing one CSV file per frame.
func NewCSVSink(dir string, logger *slog.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("export: failed to create output directory: %w", err)
	}
	return &CSVSink{dir: dir, log: logger}, nil
}

func (s *CSVSink) Write(_ context.Context, name string, f *frame.Frame) error {
	path := filepath.Join(s.dir, name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: failed to create %s: %w", path, err)
	}
	if err := f.WriteCSV(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("export: failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("export: failed to close %s: %w", path, err)
	}
	s.log.Debug("wrote csv file", "path", path, "rows", f.NumRows(), "columns", f.NumCols())
	return nil
}

func (s *CSVSink) Close() error { return nil }

var _ Sink = (*CSVSink)(nil)

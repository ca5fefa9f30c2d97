// Package export draws frames from parametric generators and delivers them
// to external stores: CSV files, or a SQLite, DuckDB, or Postgres database.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/draw"
	"github.com/bertiewooster/polars/pkg/frame"
	"github.com/bertiewooster/polars/pkg/parametric"
	"github.com/bertiewooster/polars/pkg/value"
)

// Sink receives named frames drawn by the export runner.
type Sink interface {
	// Write stores one frame under the given name. Names are unique per
	// run; sinks may treat them as file stems or table names.
	Write(ctx context.Context, name string, f *frame.Frame) error
	Close() error
}

// Job names one frame to draw and deliver.
type Job struct {
	Name string
	Spec parametric.FrameSpec
	Seed uint64
}

// Run draws every job and writes the result through the sink. Each job gets
// its own generator and randomness source, so jobs are independent and can
// run concurrently; parallel caps the number of in-flight jobs.
func Run(ctx context.Context, sink Sink, jobs []Job, parallel int, logger *slog.Logger) error {
	log := logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if parallel < 1 {
		parallel = 1
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	for _, job := range jobs {
		eg.Go(func() error {
			gen, err := parametric.Frames(job.Spec)
			if err != nil {
				return fmt.Errorf("export: job %s: %w", job.Name, err)
			}
			res, err := gen.Draw(draw.NewSource(job.Seed))
			if err != nil {
				return fmt.Errorf("export: job %s: %w", job.Name, err)
			}
			f, err := res.Collect()
			if err != nil {
				return fmt.Errorf("export: job %s: %w", job.Name, err)
			}
			log.Debug("drew frame", "name", job.Name, "seed", job.Seed, "rows", f.NumRows(), "columns", f.NumCols())
			return sink.Write(egctx, job.Name, f)
		})
	}
	return eg.Wait()
}

// quoteIdent double-quotes an identifier for SQL, doubling embedded quotes.
// Both SQLite and Postgres accept this form.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(name string, schema frame.Schema, colType func(datatype.DType) string) string {
	defs := make([]string, len(schema))
	for i, fld := range schema {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(fld.Name), colType(fld.DType))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func insertSQL(name string, schema frame.Schema, placeholder func(i int) string) string {
	cols := make([]string, len(schema))
	marks := make([]string, len(schema))
	for i, fld := range schema {
		cols[i] = quoteIdent(fld.Name)
		marks[i] = placeholder(i)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// bindValue maps a frame value onto the types database/sql drivers accept.
// Temporal values become their canonical string forms so the stored text
// matches the CSV output for the same frame.
func bindValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		// Values past the int64 range only survive as text.
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return x.Nanoseconds()
	case value.Date:
		return x.String()
	case value.TimeOfDay:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

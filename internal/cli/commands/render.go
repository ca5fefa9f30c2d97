package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bertiewooster/polars/pkg/frame"
	"github.com/bertiewooster/polars/pkg/value"
)

// renderFrame writes a drawn frame in the requested output format.
func renderFrame(w io.Writer, f *frame.Frame, format string) error {
	switch format {
	case "json":
		return renderJSON(w, f)
	case "csv":
		return f.WriteCSV(w)
	case "md", "markdown":
		return renderMarkdown(w, f)
	case "", "table":
		return renderTable(w, f)
	default:
		return fmt.Errorf("unknown format %q (want table, csv, json, or markdown)", format)
	}
}

func renderTable(w io.Writer, f *frame.Frame) error {
	if f.NumCols() > 0 {
		_, _ = fmt.Fprintln(w, f.Render())
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", f.NumRows())
	return nil
}

func renderJSON(w io.Writer, f *frame.Frame) error {
	names := f.Schema().Names()
	results := make([]map[string]any, 0, f.NumRows())
	for _, r := range f.Rows() {
		row := make(map[string]any, len(names))
		for i, name := range names {
			row[name] = jsonValue(r[i])
		}
		results = append(results, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderMarkdown(w io.Writer, f *frame.Frame) error {
	if f.NumCols() == 0 {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", f.NumRows())
		return nil
	}

	names := f.Schema().Names()
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(names, " | "))
	seps := make([]string, len(names))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range f.Rows() {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = formatValue(v)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// jsonValue maps a frame value onto something encoding/json accepts.
// Non-finite floats have no JSON number form and become strings.
func jsonValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return x
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
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
		return v
	}
}

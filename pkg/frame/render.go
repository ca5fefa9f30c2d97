package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bertiewooster/polars/pkg/value"
)

// Render returns the frame as a text table, one header cell per column
// showing name and dtype.
func (f *Frame) Render() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	// Dtype names in headers keep their case.
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(f.cols))
	for i, c := range f.cols {
		header[i] = fmt.Sprintf("%s (%s)", c.Name(), c.DType())
	}
	t.AppendHeader(header)

	for _, r := range f.Rows() {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = displayValue(v)
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// WriteCSV writes the frame with a header row. Nulls become empty cells;
// floats round-trip through the shortest representation.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	if err := cw.Write(names); err != nil {
		return err
	}

	for _, r := range f.Rows() {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = csvValue(v)
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return strconv.FormatInt(x.Nanoseconds(), 10)
	case value.TimeOfDay:
		return x.String()
	case value.Date:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

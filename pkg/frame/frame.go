package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bertiewooster/polars/pkg/datatype"
)

// Layout says how Construct should read its data argument: as a slice of
// columns or as a slice of rows. It only matters during construction; the
// resulting frame is columnar either way.
type Layout uint8

const (
	ColumnMajor Layout = iota
	RowMajor
)

func (l Layout) String() string {
	if l == RowMajor {
		return "row"
	}
	return "col"
}

// ParseLayout parses "col" or "row" (case-insensitive).
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "col", "column", "columns":
		return ColumnMajor, nil
	case "row", "rows":
		return RowMajor, nil
	default:
		return ColumnMajor, fmt.Errorf("frame: unknown layout %q (want col or row)", s)
	}
}

// Field names and types one column.
type Field struct {
	Name  string
	DType datatype.DType
}

// Schema is the ordered column layout of a frame.
type Schema []Field

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Equal reports whether two schemas have identical fields in identical
// order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Schema) checkDuplicates() error {
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if _, dup := seen[f.Name]; dup {
			return DuplicateColumnError{Name: f.Name}
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// DuplicateColumnError is returned when a schema names the same column
// twice.
type DuplicateColumnError struct {
	Name string
}

func (e DuplicateColumnError) Error() string {
	return fmt.Sprintf("frame: duplicate column name %q", e.Name)
}

// UnknownColumnError is returned when a lookup names a column the frame does
// not have.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e UnknownColumnError) Error() string {
	return fmt.Sprintf("frame: unknown column %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ErrRaggedData is wrapped by construction errors caused by columns or rows
// of inconsistent length.
var ErrRaggedData = errors.New("inconsistent lengths")

// Frame is an ordered collection of equal-length series.
type Frame struct {
	cols []*Series
}

// Construct builds a frame from raw data. With ColumnMajor, data holds one
// slice per column; with RowMajor, one slice per row. Either way the schema
// fixes column names, types and order, and a nil element is a null.
func Construct(data [][]any, schema Schema, layout Layout, opts ...Option) (*Frame, error) {
	if err := schema.checkDuplicates(); err != nil {
		return nil, err
	}
	cfg := newBuildConfig(opts)

	columns := data
	if layout == RowMajor {
		transposed, err := transpose(data, len(schema))
		if err != nil {
			return nil, err
		}
		columns = transposed
	}

	if len(columns) != len(schema) {
		return nil, fmt.Errorf("frame: data has %d columns, schema has %d", len(columns), len(schema))
	}
	for i := 1; i < len(columns); i++ {
		if len(columns[i]) != len(columns[0]) {
			return nil, fmt.Errorf("frame: column %q has length %d, column %q has length %d: %w",
				schema[i].Name, len(columns[i]), schema[0].Name, len(columns[0]), ErrRaggedData)
		}
	}

	cols := make([]*Series, len(schema))
	for i, f := range schema {
		s, err := newSeries(cfg, f.Name, f.DType, columns[i])
		if err != nil {
			return nil, err
		}
		cols[i] = s
	}
	return &Frame{cols: cols}, nil
}

func transpose(rows [][]any, width int) ([][]any, error) {
	columns := make([][]any, width)
	for j := range columns {
		columns[j] = make([]any, len(rows))
	}
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("frame: row %d has %d values, schema has %d: %w", i, len(row), width, ErrRaggedData)
		}
		for j, v := range row {
			columns[j][i] = v
		}
	}
	return columns, nil
}

// FromSeries assembles already-built series into a frame without copying, so
// chunk boundaries survive. The schema must agree with the series slot by
// slot.
func FromSeries(cols []*Series, schema Schema) (*Frame, error) {
	if err := schema.checkDuplicates(); err != nil {
		return nil, err
	}
	if len(cols) != len(schema) {
		return nil, fmt.Errorf("frame: %d series, schema has %d columns", len(cols), len(schema))
	}
	for i, f := range schema {
		if cols[i].Name() != f.Name {
			return nil, fmt.Errorf("frame: column %d is named %q, schema says %q", i, cols[i].Name(), f.Name)
		}
		if cols[i].DType() != normalizeDType(f.DType) {
			return nil, fmt.Errorf("frame: column %q is %s, schema says %s", f.Name, cols[i].DType(), f.DType)
		}
		if cols[i].Len() != cols[0].Len() {
			return nil, fmt.Errorf("frame: column %q has length %d, column %q has length %d: %w",
				f.Name, cols[i].Len(), schema[0].Name, cols[0].Len(), ErrRaggedData)
		}
	}
	out := make([]*Series, len(cols))
	copy(out, cols)
	return &Frame{cols: out}, nil
}

// NumRows returns the row count. A frame without columns has zero rows.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.cols) }

// Schema returns the frame's column layout.
func (f *Frame) Schema() Schema {
	s := make(Schema, len(f.cols))
	for i, c := range f.cols {
		s[i] = Field{Name: c.Name(), DType: c.DType()}
	}
	return s
}

// Columns returns the underlying series in order. The slice is a copy; the
// series are shared.
func (f *Frame) Columns() []*Series {
	out := make([]*Series, len(f.cols))
	copy(out, f.cols)
	return out
}

// ColumnAt returns the series at position i.
func (f *Frame) ColumnAt(i int) (*Series, error) {
	if i < 0 || i >= len(f.cols) {
		return nil, fmt.Errorf("frame: column index %d out of range (%d columns)", i, len(f.cols))
	}
	return f.cols[i], nil
}

// Column returns the series with the given name.
func (f *Frame) Column(name string) (*Series, error) {
	for _, c := range f.cols {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, UnknownColumnError{Name: name, Available: f.Schema().Names()}
}

// Select returns a new frame holding only the named columns, in the given
// order. Series are shared, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Series, len(names))
	for i, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return &Frame{cols: cols}, nil
}

// Rows decodes the frame into row tuples.
func (f *Frame) Rows() [][]any {
	columns := make([][]any, len(f.cols))
	for j, c := range f.cols {
		columns[j] = c.Values()
	}
	rows := make([][]any, f.NumRows())
	for i := range rows {
		row := make([]any, len(f.cols))
		for j := range f.cols {
			row[j] = columns[j][i]
		}
		rows[i] = row
	}
	return rows
}

// SplitAt divides the frame into rows [0, i) and [i, n). Columns are
// zero-copy sliced.
func (f *Frame) SplitAt(i int) (*Frame, *Frame, error) {
	top := make([]*Series, len(f.cols))
	bottom := make([]*Series, len(f.cols))
	for j, c := range f.cols {
		l, r, err := c.SplitAt(i)
		if err != nil {
			return nil, nil, err
		}
		top[j], bottom[j] = l, r
	}
	return &Frame{cols: top}, &Frame{cols: bottom}, nil
}

// Vstack concatenates other below f. Schemas must match exactly; chunk
// boundaries in both operands survive into the result.
func (f *Frame) Vstack(other *Frame) (*Frame, error) {
	if !f.Schema().Equal(other.Schema()) {
		return nil, fmt.Errorf("frame: cannot vstack, schemas differ (%v vs %v)", f.Schema().Names(), other.Schema().Names())
	}
	cols := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		appended, err := c.Append(other.cols[i])
		if err != nil {
			return nil, err
		}
		cols[i] = appended
	}
	return &Frame{cols: cols}, nil
}

// Head returns the first n rows (all rows when n exceeds the row count).
// Columns are zero-copy sliced.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > f.NumRows() {
		n = f.NumRows()
	}
	top, _, err := f.SplitAt(n)
	if err != nil {
		return f
	}
	return top
}

// Collect returns the frame itself, letting eager frames satisfy Table.
func (f *Frame) Collect() (*Frame, error) { return f, nil }

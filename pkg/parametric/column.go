package parametric

import (
	"errors"
	"fmt"
	"time"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/draw"
	"github.com/bertiewooster/polars/pkg/value"
)

// Column declares one column for the Frames generator. Unset fields are
// resolved when the generator is built: a missing dtype comes from the value
// source (by sampling) or from a random registry pick, a missing name gets a
// positional default, and a missing null probability falls back to the
// frame-level policy.
type Column struct {
	// Name is the column name. Empty means "assign col<N> by position".
	Name string

	// DType is the element type. The zero value means "infer or pick".
	DType datatype.DType

	// Source overrides the registry's value source for this column.
	Source value.Source

	// NullProbability is the per-column chance in [0, 1] that a position is
	// overwritten with null. Nil defers to the frame-level policy.
	NullProbability *float64

	// Unique requires all non-null values in the column to be distinct.
	Unique bool

	// ProbeLimit caps the samples taken when inferring DType from Source.
	// Zero means DefaultProbeLimit.
	ProbeLimit int
}

func (c Column) validate() error {
	if c.NullProbability != nil && (*c.NullProbability < 0 || *c.NullProbability > 1) {
		return InvalidNullProbabilityError{Value: *c.NullProbability}
	}
	return nil
}

// resolve pins down the column's dtype. With a dtype set it only checks
// registry coverage; with a custom source it samples; with neither it picks
// a registry dtype uniformly. src supplies the resolution randomness, which
// is separate from the per-draw randomness: explicit columns resolve once
// per generator, not once per frame.
func (c *Column) resolve(src *draw.Source, reg *value.Registry) error {
	if !c.DType.IsZero() {
		if _, ok := reg.Lookup(c.DType); !ok {
			return UnsupportedDTypeError{DType: c.DType, Available: reg.DTypes()}
		}
		return nil
	}

	if c.Source == nil {
		dts := reg.DTypes()
		dt, err := draw.SampleFrom(src, dts)
		if err != nil {
			return fmt.Errorf("parametric: registry has no value sources to pick a dtype from")
		}
		c.DType = dt
		return nil
	}

	limit := c.ProbeLimit
	if limit <= 0 {
		limit = DefaultProbeLimit
	}
	for i := 0; i < limit; i++ {
		v, err := c.Source(src)
		if err != nil {
			if errors.Is(err, draw.ErrExhausted) {
				continue
			}
			return fmt.Errorf("parametric: sampling value source for dtype inference: %w", err)
		}
		if v == nil || emptyNested(v) {
			continue
		}
		dt, err := inferDType(v)
		if err != nil {
			return err
		}
		c.DType = dt
		return nil
	}
	return fmt.Errorf("parametric: no usable sample in %d draws: %w", limit, ErrUnresolvableDType)
}

// emptyNested reports whether v is a list containing nothing but empty or
// nested-empty lists. Such values carry no element type and cannot seed
// inference.
func emptyNested(v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range list {
		if !emptyNested(e) {
			return false
		}
	}
	return true
}

// inferDType maps a sampled Go value to the dtype that stores it.
func inferDType(v any) (datatype.DType, error) {
	switch v.(type) {
	case bool:
		return datatype.Boolean, nil
	case int8:
		return datatype.Int8, nil
	case int16:
		return datatype.Int16, nil
	case int32:
		return datatype.Int32, nil
	case int64, int:
		return datatype.Int64, nil
	case uint8:
		return datatype.UInt8, nil
	case uint16:
		return datatype.UInt16, nil
	case uint32:
		return datatype.UInt32, nil
	case uint64:
		return datatype.UInt64, nil
	case float32:
		return datatype.Float32, nil
	case float64:
		return datatype.Float64, nil
	case string:
		return datatype.Utf8, nil
	case time.Time:
		return datatype.Datetime, nil
	case time.Duration:
		return datatype.Duration, nil
	case value.Date:
		return datatype.Date, nil
	case value.TimeOfDay:
		return datatype.Time, nil
	default:
		return datatype.DType{}, fmt.Errorf("parametric: cannot infer a dtype from %T sample", v)
	}
}

// ColumnsSpec is a compact request for a set of columns, expanded by
// BuildColumns.
type ColumnsSpec struct {
	// Count fixes the number of columns, named col0..col<N-1>. Nil draws a
	// count from [MinCols, MaxCols].
	Count *int

	// Names fixes the column names explicitly and wins over Count.
	Names []string

	// DTypes assigns element types: empty picks a random registry dtype per
	// column, a single entry applies uniformly, and otherwise the length
	// must equal the column count.
	DTypes []datatype.DType

	// MinCols and MaxCols bound the drawn count when Count and Names are
	// both unset. Defaults 0 and MaxCols.
	MinCols *int
	MaxCols *int

	// Unique applies the uniqueness constraint to every produced column.
	Unique bool

	// Registry supplies the dtype pool for random assignment. Nil means
	// value.Default().
	Registry *value.Registry
}

// BuildColumns expands a compact request into concrete column declarations
// with names and dtypes populated. It is pure given its random source, and
// serves both standalone use and the Frames generator's automatic mode.
func BuildColumns(src *draw.Source, spec ColumnsSpec) ([]Column, error) {
	reg := spec.Registry
	if reg == nil {
		reg = value.Default()
	}

	var names []string
	if spec.Names != nil {
		names = make([]string, len(spec.Names))
		copy(names, spec.Names)
	} else {
		n := 0
		if spec.Count != nil {
			n = *spec.Count
		} else {
			n = src.IntBetween(intOr(spec.MinCols, 0), intOr(spec.MaxCols, MaxCols))
		}
		names = make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("col%d", i)
		}
	}

	dtypes := make([]datatype.DType, len(names))
	switch {
	case len(spec.DTypes) == 0:
		pool := reg.DTypes()
		for i := range dtypes {
			dt, err := draw.SampleFrom(src, pool)
			if err != nil {
				return nil, fmt.Errorf("parametric: registry has no value sources to pick a dtype from")
			}
			dtypes[i] = dt
		}
	case len(spec.DTypes) == 1:
		for i := range dtypes {
			dtypes[i] = spec.DTypes[0]
		}
	case len(spec.DTypes) == len(names):
		copy(dtypes, spec.DTypes)
	default:
		return nil, CountMismatchError{DTypes: len(spec.DTypes), Columns: len(names)}
	}

	cols := make([]Column, len(names))
	for i := range cols {
		cols[i] = Column{Name: names[i], DType: dtypes[i], Unique: spec.Unique}
	}
	return cols, nil
}

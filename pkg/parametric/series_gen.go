package parametric

import (
	"fmt"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/draw"
	"github.com/bertiewooster/polars/pkg/frame"
	"github.com/bertiewooster/polars/pkg/value"
)

// SeriesSpec declares the series a SeriesGen should draw.
type SeriesSpec struct {
	// Name is the literal series name. NameSource, when set, draws the name
	// instead; the drawn value must be a string.
	Name       string
	NameSource value.Source

	// DType fixes the element type. The zero value draws one uniformly from
	// the allowed-minus-excluded registry dtypes. A unit-less Datetime or
	// Duration additionally draws a random time unit.
	DType datatype.DType

	// Size fixes the length exactly; otherwise it is drawn uniformly from
	// [MinSize, MaxSize] (defaults 0 and MaxDataSize).
	Size    *int
	MinSize *int
	MaxSize *int

	// Source overrides the registry's value source for the resolved dtype.
	Source value.Source

	// NullProbability is the chance in [0, 1] that each position is
	// overwritten with null, independently of what the source produced.
	NullProbability float64

	// AllowInfinity controls whether float dtypes may produce non-finite
	// values (NaN and infinities). Nil means true.
	AllowInfinity *bool

	// Unique requires all values to be pairwise distinct.
	Unique bool

	// Chunked forces the drawn series to be split into two physical chunks
	// (true), forbids it (false), or leaves it to a coin flip (nil).
	Chunked *bool

	// AllowedDTypes and ExcludedDTypes restrict the pool used when DType is
	// unset.
	AllowedDTypes  []datatype.DType
	ExcludedDTypes []datatype.DType

	// Registry supplies value sources. Nil means value.Default().
	Registry *value.Registry
}

// SeriesGen draws series according to a validated SeriesSpec. A generator is
// immutable and can draw any number of times; it is safe for concurrent use
// only with distinct draw sources.
type SeriesGen struct {
	spec       SeriesSpec
	reg        *value.Registry
	selectable []datatype.DType
}

// Series validates the spec and builds a series generator. Specification
// errors (null probability out of range, dtype without a value source, an
// allowed/excluded filter that leaves nothing) surface here, before any
// drawing.
func Series(spec SeriesSpec) (*SeriesGen, error) {
	if spec.NullProbability < 0 || spec.NullProbability > 1 {
		return nil, InvalidNullProbabilityError{Value: spec.NullProbability}
	}
	reg := spec.Registry
	if reg == nil {
		reg = value.Default()
	}

	g := &SeriesGen{spec: spec, reg: reg}
	if !spec.DType.IsZero() {
		if _, ok := reg.Lookup(spec.DType); !ok {
			return nil, UnsupportedDTypeError{DType: spec.DType, Available: reg.DTypes()}
		}
		return g, nil
	}

	allowed := spec.AllowedDTypes
	if allowed == nil {
		allowed = reg.DTypes()
	}
	g.selectable = datatype.Selectable(allowed, spec.ExcludedDTypes)
	if len(g.selectable) == 0 {
		return nil, fmt.Errorf("parametric: allowed/excluded dtype filters leave nothing to draw from")
	}
	for _, dt := range g.selectable {
		if _, ok := reg.Lookup(dt); !ok {
			return nil, UnsupportedDTypeError{DType: dt, Available: reg.DTypes()}
		}
	}
	return g, nil
}

// Draw produces one series. All randomness flows through src.
func (g *SeriesGen) Draw(src *draw.Source) (*frame.Series, error) {
	return g.draw(src, frame.NewStringCache())
}

// draw is the shared path behind Draw and the frame assembler, which passes
// one string cache per construction attempt instead of one per series.
func (g *SeriesGen) draw(src *draw.Source, cache *frame.StringCache) (*frame.Series, error) {
	spec := g.spec

	// Element type, with a random unit for unit-less temporal dtypes.
	dt := spec.DType
	if dt.IsZero() {
		picked, err := draw.SampleFrom(src, g.selectable)
		if err != nil {
			return nil, err
		}
		dt = picked
	}
	if dt.HasUnit() && dt.Unit == datatype.UnitUnset {
		unit, err := draw.SampleFrom(src, datatype.TemporalUnits)
		if err != nil {
			return nil, err
		}
		dt.Unit = unit
	}

	// Element source.
	elem := spec.Source
	if elem == nil {
		registered, ok := g.reg.Lookup(dt)
		if !ok {
			return nil, UnsupportedDTypeError{DType: dt, Available: g.reg.DTypes()}
		}
		elem = registered
	}
	if dt.IsFloat() && !boolOr(spec.AllowInfinity, true) {
		elem = value.Finite(elem)
	}

	// Size, then name.
	size := 0
	if spec.Size != nil {
		size = *spec.Size
	} else {
		size = src.IntBetween(intOr(spec.MinSize, 0), intOr(spec.MaxSize, MaxDataSize))
	}
	name := spec.Name
	if spec.NameSource != nil {
		v, err := spec.NameSource(src)
		if err != nil {
			return nil, fmt.Errorf("parametric: drawing series name: %w", err)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("parametric: name source produced %T, want string", v)
		}
		name = s
	}

	// Values: empty, all-null, or drawn with an independent second null
	// pass for probabilities strictly between 0 and 1.
	var vals []any
	switch {
	case size == 0:
		vals = []any{}
	case spec.NullProbability == 1:
		vals = make([]any, size)
	default:
		drawn, err := value.DrawList(src, elem, size, spec.Unique)
		if err != nil {
			return nil, err
		}
		vals = drawn
		if spec.NullProbability > 0 {
			for i := 0; i < size; i++ {
				if src.Chance(spec.NullProbability) {
					vals[i] = nil
				}
			}
		}
	}

	s, err := frame.NewSeries(name, dt, vals, frame.WithStringCache(cache))
	if err != nil {
		return nil, err
	}

	// Physical fragmentation. Splitting a one-row series leaves an empty
	// leading chunk; the chunk count still observes the split.
	if size > 0 && (boolOr(spec.Chunked, false) || (spec.Chunked == nil && src.Bool())) {
		left, right, err := s.SplitAt(size / 2)
		if err != nil {
			return nil, err
		}
		s, err = left.Append(right)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

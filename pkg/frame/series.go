// Package frame is the columnar storage engine behind the generators: named,
// typed, chunked series backed by Apache Arrow arrays, assembled into frames
// from either column-major or row-major data. Chunk boundaries are preserved
// by append and split so physical fragmentation stays observable.
package frame

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/value"
)

// Series is a named, typed column stored as one or more Arrow chunks.
type Series struct {
	name   string
	dtype  datatype.DType
	chunks []arrow.Array
}

// NewSeries builds a single-chunk series from logical values. A nil value
// becomes a null. Value types must match the dtype (see buildArray); a
// mismatch is a construction error.
func NewSeries(name string, dt datatype.DType, values []any, opts ...Option) (*Series, error) {
	return newSeries(newBuildConfig(opts), name, dt, values)
}

func newSeries(cfg *buildConfig, name string, dt datatype.DType, values []any) (*Series, error) {
	dt = normalizeDType(dt)
	arr, err := buildArray(cfg, dt, values)
	if err != nil {
		return nil, fmt.Errorf("frame: column %q: %w", name, err)
	}
	return &Series{name: name, dtype: dt, chunks: []arrow.Array{arr}}, nil
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// DType returns the logical element type.
func (s *Series) DType() datatype.DType { return s.dtype }

// Len returns the number of logical values across all chunks.
func (s *Series) Len() int {
	n := 0
	for _, c := range s.chunks {
		n += c.Len()
	}
	return n
}

// NumChunks returns the number of physical chunks.
func (s *Series) NumChunks() int { return len(s.chunks) }

// NullCount returns the number of null values across all chunks.
func (s *Series) NullCount() int {
	n := 0
	for _, c := range s.chunks {
		n += c.NullN()
	}
	return n
}

// Values decodes the logical values across all chunks. Nulls come back as
// nil; see decodeArray for the value types.
func (s *Series) Values() []any {
	out := make([]any, 0, s.Len())
	for _, c := range s.chunks {
		out = append(out, decodeArray(c, s.dtype)...)
	}
	return out
}

// SplitAt divides the series into [0, i) and [i, len). Chunk data is shared,
// not copied; a chunk straddling the split point is zero-copy sliced. Both
// sides keep at least one chunk, so splitting at an end yields an empty
// fragment rather than a chunkless series.
func (s *Series) SplitAt(i int) (*Series, *Series, error) {
	if i < 0 || i > s.Len() {
		return nil, nil, fmt.Errorf("frame: split index %d out of range for series %q of length %d", i, s.name, s.Len())
	}
	var left, right []arrow.Array
	remaining := i
	for _, c := range s.chunks {
		n := c.Len()
		switch {
		case remaining >= n:
			left = append(left, c)
			remaining -= n
		case remaining <= 0:
			right = append(right, c)
		default:
			left = append(left, array.NewSlice(c, 0, int64(remaining)))
			right = append(right, array.NewSlice(c, int64(remaining), int64(n)))
			remaining = 0
		}
	}
	if len(left) == 0 && len(s.chunks) > 0 {
		left = []arrow.Array{array.NewSlice(s.chunks[0], 0, 0)}
	}
	if len(right) == 0 && len(s.chunks) > 0 {
		last := s.chunks[len(s.chunks)-1]
		right = []arrow.Array{array.NewSlice(last, int64(last.Len()), int64(last.Len()))}
	}
	return &Series{name: s.name, dtype: s.dtype, chunks: left},
		&Series{name: s.name, dtype: s.dtype, chunks: right}, nil
}

// Append concatenates other onto s, keeping every existing chunk boundary.
// The result carries s's name; dtypes must match exactly.
func (s *Series) Append(other *Series) (*Series, error) {
	if s.dtype != other.dtype {
		return nil, fmt.Errorf("frame: cannot append %s series to %s series %q", other.dtype, s.dtype, s.name)
	}
	chunks := make([]arrow.Array, 0, len(s.chunks)+len(other.chunks))
	chunks = append(chunks, s.chunks...)
	chunks = append(chunks, other.chunks...)
	return &Series{name: s.name, dtype: s.dtype, chunks: chunks}, nil
}

// Rename returns a copy of the series under a new name, sharing chunk data.
func (s *Series) Rename(name string) *Series {
	return &Series{name: name, dtype: s.dtype, chunks: s.chunks}
}

// Cast rebuilds the series under a new dtype, converting values with Go
// conversion semantics (narrowing truncates). Unsupported conversions fail
// per value. The result is always a single chunk.
func (s *Series) Cast(dt datatype.DType, opts ...Option) (*Series, error) {
	dt = normalizeDType(dt)
	vals := s.Values()
	converted := make([]any, len(vals))
	for i, v := range vals {
		cv, err := castValue(v, dt)
		if err != nil {
			return nil, fmt.Errorf("frame: cast %q to %s: row %d: %w", s.name, dt, i, err)
		}
		converted[i] = cv
	}
	return NewSeries(s.name, dt, converted, opts...)
}

// castValue converts one logical value for Cast. It is deliberately more
// lenient than buildArray: numerics convert across widths and to floats,
// anything stringifiable converts to Utf8/Categorical.
func castValue(v any, to datatype.DType) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch to.Kind {
	case datatype.KindUtf8, datatype.KindCategorical:
		return stringifyValue(v), nil

	case datatype.KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case datatype.KindInt8, datatype.KindInt16, datatype.KindInt32, datatype.KindInt64,
		datatype.KindUInt8, datatype.KindUInt16, datatype.KindUInt32, datatype.KindUInt64,
		datatype.KindFloat32, datatype.KindFloat64:
		return castNumeric(v, to)

	case datatype.KindDate:
		if d, ok := v.(value.Date); ok {
			return d, nil
		}

	case datatype.KindTime:
		if t, ok := v.(value.TimeOfDay); ok {
			return t, nil
		}

	case datatype.KindDatetime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}

	case datatype.KindDuration:
		if d, ok := v.(time.Duration); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("cannot cast %T to %s", v, to)
}

func castNumeric(v any, to datatype.DType) (any, error) {
	var f float64
	var i int64
	var u uint64
	var isFloat, isUint bool

	switch x := v.(type) {
	case int8:
		i = int64(x)
	case int16:
		i = int64(x)
	case int32:
		i = int64(x)
	case int64:
		i = x
	case int:
		i = int64(x)
	case uint8:
		u, isUint = uint64(x), true
	case uint16:
		u, isUint = uint64(x), true
	case uint32:
		u, isUint = uint64(x), true
	case uint64:
		u, isUint = x, true
	case float32:
		f, isFloat = float64(x), true
	case float64:
		f, isFloat = x, true
	case bool:
		if x {
			i = 1
		}
	default:
		return nil, fmt.Errorf("cannot cast %T to %s", v, to)
	}

	if isFloat {
		i = int64(f)
		u = uint64(f)
	} else if isUint {
		i = int64(u)
		f = float64(u)
	} else {
		u = uint64(i)
		f = float64(i)
	}

	switch to.Kind {
	case datatype.KindInt8:
		return int8(i), nil
	case datatype.KindInt16:
		return int16(i), nil
	case datatype.KindInt32:
		return int32(i), nil
	case datatype.KindInt64:
		return i, nil
	case datatype.KindUInt8:
		return uint8(u), nil
	case datatype.KindUInt16:
		return uint16(u), nil
	case datatype.KindUInt32:
		return uint32(u), nil
	case datatype.KindUInt64:
		return u, nil
	case datatype.KindFloat32:
		return float32(f), nil
	default:
		return f, nil
	}
}

func stringifyValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package frame

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/value"
)

// Option adjusts construction behavior for Construct, NewSeries and Cast.
type Option func(*buildConfig)

type buildConfig struct {
	mem   memory.Allocator
	cache *StringCache
}

// WithAllocator sets the Arrow allocator used for new arrays.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *buildConfig) { c.mem = mem }
}

// WithStringCache shares a categorical interning cache across construction
// calls. Without it every call interns into a fresh cache of its own.
func WithStringCache(cache *StringCache) Option {
	return func(c *buildConfig) { c.cache = cache }
}

func newBuildConfig(opts []Option) *buildConfig {
	c := &buildConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.mem == nil {
		c.mem = memory.NewGoAllocator()
	}
	if c.cache == nil {
		c.cache = NewStringCache()
	}
	return c
}

// normalizeDType pins the storage unit for unit-less temporal dtypes so a
// built series always reports the unit its values were actually stored with.
func normalizeDType(dt datatype.DType) datatype.DType {
	if dt.HasUnit() && dt.Unit == datatype.UnitUnset {
		dt.Unit = datatype.Microseconds
	}
	return dt
}

// buildArray lays values down as one Arrow array of the storage type for dt.
// A nil element becomes a null. Values must already have the exact Go type
// the dtype stores (int accepted alongside int64 for Int64); anything else
// is a construction error naming the offending row.
func buildArray(cfg *buildConfig, dt datatype.DType, values []any) (arrow.Array, error) {
	badValue := func(i int, v any) error {
		return fmt.Errorf("row %d: cannot store %T as %s", i, v, dt)
	}

	switch dt.Kind {
	case datatype.KindBoolean:
		b := array.NewBooleanBuilder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(bool)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindInt8:
		b := array.NewInt8Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(int8)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindInt16:
		b := array.NewInt16Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(int16)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindInt32:
		b := array.NewInt32Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(int32)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindInt64:
		b := array.NewInt64Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			switch x := v.(type) {
			case int64:
				b.Append(x)
			case int:
				b.Append(int64(x))
			default:
				return nil, badValue(i, v)
			}
		}
		return b.NewArray(), nil

	case datatype.KindUInt8:
		b := array.NewUint8Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(uint8)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindUInt16:
		b := array.NewUint16Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(uint16)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindUInt32:
		b := array.NewUint32Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(uint32)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindUInt64:
		b := array.NewUint64Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(uint64)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindFloat32:
		b := array.NewFloat32Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(float32)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindFloat64:
		b := array.NewFloat64Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(float64)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindUtf8:
		b := array.NewStringBuilder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(string)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(x)
		}
		return b.NewArray(), nil

	case datatype.KindCategorical:
		return buildDictionary(cfg, dt, values)

	case datatype.KindDate:
		b := array.NewDate32Builder(cfg.mem)
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(value.Date)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(arrow.Date32(x))
		}
		return b.NewArray(), nil

	case datatype.KindTime:
		b := array.NewTime64Builder(cfg.mem, &arrow.Time64Type{Unit: arrow.Nanosecond})
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(value.TimeOfDay)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(arrow.Time64(x))
		}
		return b.NewArray(), nil

	case datatype.KindDatetime:
		b := array.NewTimestampBuilder(cfg.mem, &arrow.TimestampType{Unit: arrowUnit(dt.Unit), TimeZone: "UTC"})
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(time.Time)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(timestampValue(x, dt.Unit))
		}
		return b.NewArray(), nil

	case datatype.KindDuration:
		b := array.NewDurationBuilder(cfg.mem, &arrow.DurationType{Unit: arrowUnit(dt.Unit)})
		defer b.Release()
		for i, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			x, ok := v.(time.Duration)
			if !ok {
				return nil, badValue(i, v)
			}
			b.Append(durationValue(x, dt.Unit))
		}
		return b.NewArray(), nil

	default:
		return nil, fmt.Errorf("no storage for dtype %s", dt)
	}
}

func buildDictionary(cfg *buildConfig, dt datatype.DType, values []any) (arrow.Array, error) {
	idxb := array.NewUint32Builder(cfg.mem)
	defer idxb.Release()
	for i, v := range values {
		if v == nil {
			idxb.AppendNull()
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("row %d: cannot store %T as %s", i, v, dt)
		}
		idxb.Append(cfg.cache.Intern(s))
	}
	indices := idxb.NewArray()
	defer indices.Release()

	dictb := array.NewStringBuilder(cfg.mem)
	defer dictb.Release()
	for _, s := range cfg.cache.Values() {
		dictb.Append(s)
	}
	dict := dictb.NewArray()
	defer dict.Release()

	typ := &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Uint32,
		ValueType: arrow.BinaryTypes.String,
	}
	return array.NewDictionaryArray(typ, indices, dict), nil
}

func timestampValue(t time.Time, u datatype.TimeUnit) arrow.Timestamp {
	switch u {
	case datatype.Milliseconds:
		return arrow.Timestamp(t.UnixMilli())
	case datatype.Nanoseconds:
		return arrow.Timestamp(t.UnixNano())
	default:
		return arrow.Timestamp(t.UnixMicro())
	}
}

func durationValue(d time.Duration, u datatype.TimeUnit) arrow.Duration {
	switch u {
	case datatype.Milliseconds:
		return arrow.Duration(d / time.Millisecond)
	case datatype.Nanoseconds:
		return arrow.Duration(d)
	default:
		return arrow.Duration(d / time.Microsecond)
	}
}

// decodeArray recovers the logical Go values from one Arrow array. Nulls come
// back as nil; everything else comes back as the type buildArray accepts, so
// decode followed by rebuild round-trips.
func decodeArray(arr arrow.Array, dt datatype.DType) []any {
	out := make([]any, arr.Len())

	switch dt.Kind {
	case datatype.KindBoolean:
		a := arr.(*array.Boolean)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindInt8:
		a := arr.(*array.Int8)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindInt16:
		a := arr.(*array.Int16)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindInt32:
		a := arr.(*array.Int32)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindInt64:
		a := arr.(*array.Int64)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindUInt8:
		a := arr.(*array.Uint8)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindUInt16:
		a := arr.(*array.Uint16)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindUInt32:
		a := arr.(*array.Uint32)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindUInt64:
		a := arr.(*array.Uint64)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindFloat32:
		a := arr.(*array.Float32)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindFloat64:
		a := arr.(*array.Float64)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindUtf8:
		a := arr.(*array.String)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = a.Value(i)
			}
		}
	case datatype.KindCategorical:
		a := arr.(*array.Dictionary)
		dict := a.Dictionary().(*array.String)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = dict.Value(a.GetValueIndex(i))
			}
		}
	case datatype.KindDate:
		a := arr.(*array.Date32)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = value.Date(a.Value(i))
			}
		}
	case datatype.KindTime:
		a := arr.(*array.Time64)
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = value.TimeOfDay(a.Value(i))
			}
		}
	case datatype.KindDatetime:
		a := arr.(*array.Timestamp)
		unit := a.DataType().(*arrow.TimestampType).Unit
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = timestampTime(a.Value(i), unit)
			}
		}
	case datatype.KindDuration:
		a := arr.(*array.Duration)
		unit := a.DataType().(*arrow.DurationType).Unit
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				out[i] = durationDuration(a.Value(i), unit)
			}
		}
	}
	return out
}

func timestampTime(v arrow.Timestamp, u arrow.TimeUnit) time.Time {
	switch u {
	case arrow.Millisecond:
		return time.UnixMilli(int64(v)).UTC()
	case arrow.Nanosecond:
		return time.Unix(0, int64(v)).UTC()
	default:
		return time.UnixMicro(int64(v)).UTC()
	}
}

func durationDuration(v arrow.Duration, u arrow.TimeUnit) time.Duration {
	switch u {
	case arrow.Millisecond:
		return time.Duration(v) * time.Millisecond
	case arrow.Nanosecond:
		return time.Duration(v)
	default:
		return time.Duration(v) * time.Microsecond
	}
}

package value

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/draw"
)

// Registry maps data types to their elementary value Sources. Lookups key on
// the base type, so Datetime[ms] and Datetime[ns] share one source; the time
// unit only matters once values are laid down in storage.
type Registry struct {
	mu      sync.RWMutex
	sources map[datatype.DType]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[datatype.DType]Source)}
}

// Register installs src as the elementary source for dt, replacing any
// previous registration for the same base type.
func (r *Registry) Register(dt datatype.DType, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[dt.Base()] = src
}

// Lookup returns the source registered for dt's base type.
func (r *Registry) Lookup(dt datatype.DType) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[dt.Base()]
	return src, ok
}

// DTypes returns the registered data types in the enumeration's canonical
// order. The order is deterministic so that a seeded random pick over the
// result reproduces exactly.
func (r *Registry) DTypes() []datatype.DType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]datatype.DType, 0, len(r.sources))
	for _, dt := range datatype.All() {
		if _, ok := r.sources[dt.Base()]; ok {
			out = append(out, dt)
		}
	}
	return out
}

var defaultRegistry = newBuiltinRegistry()

// Default returns the shared registry covering every member of the dtype
// enumeration with its built-in source.
func Default() *Registry {
	return defaultRegistry
}

func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.Register(datatype.Boolean, Booleans())
	r.Register(datatype.Int8, Ints8())
	r.Register(datatype.Int16, Ints16())
	r.Register(datatype.Int32, Ints32())
	r.Register(datatype.Int64, Ints64())
	r.Register(datatype.UInt8, UInts8())
	r.Register(datatype.UInt16, UInts16())
	r.Register(datatype.UInt32, UInts32())
	r.Register(datatype.UInt64, UInts64())
	r.Register(datatype.Float32, Floats32())
	r.Register(datatype.Float64, Floats64())
	r.Register(datatype.Utf8, Strings())
	r.Register(datatype.Categorical, Categories())
	r.Register(datatype.Date, Dates())
	r.Register(datatype.Time, Times())
	r.Register(datatype.Datetime, Datetimes())
	r.Register(datatype.Duration, Durations())
	return r
}

// Booleans returns the built-in source for Boolean values.
func Booleans() Source {
	return func(s *draw.Source) (any, error) { return s.Bool(), nil }
}

// Ints8 returns the built-in full-range source for Int8 values.
func Ints8() Source {
	return func(s *draw.Source) (any, error) {
		return int8(s.IntBetween(math.MinInt8, math.MaxInt8)), nil
	}
}

// Ints16 returns the built-in full-range source for Int16 values.
func Ints16() Source {
	return func(s *draw.Source) (any, error) {
		return int16(s.IntBetween(math.MinInt16, math.MaxInt16)), nil
	}
}

// Ints32 returns the built-in full-range source for Int32 values.
func Ints32() Source {
	return func(s *draw.Source) (any, error) {
		return int32(s.IntBetween(math.MinInt32, math.MaxInt32)), nil
	}
}

// Ints64 returns the built-in full-range source for Int64 values.
func Ints64() Source {
	return func(s *draw.Source) (any, error) { return s.Int64(), nil }
}

// UInts8 returns the built-in full-range source for UInt8 values.
func UInts8() Source {
	return func(s *draw.Source) (any, error) {
		return uint8(s.IntBetween(0, math.MaxUint8)), nil
	}
}

// UInts16 returns the built-in full-range source for UInt16 values.
func UInts16() Source {
	return func(s *draw.Source) (any, error) {
		return uint16(s.IntBetween(0, math.MaxUint16)), nil
	}
}

// UInts32 returns the built-in full-range source for UInt32 values.
func UInts32() Source {
	return func(s *draw.Source) (any, error) {
		return uint32(s.Uint64()), nil
	}
}

// UInts64 returns the built-in full-range source for UInt64 values.
func UInts64() Source {
	return func(s *draw.Source) (any, error) { return s.Uint64(), nil }
}

// Float specials are drawn with elevated probability so that edge values
// (signed zero, infinities, NaN, extremes) show up in small samples instead
// of only once per few thousand draws.
const floatSpecialChance = 0.15

var float64Specials = []float64{
	0,
	math.Copysign(0, -1),
	1,
	-1,
	math.SmallestNonzeroFloat64,
	math.MaxFloat64,
	math.Inf(1),
	math.Inf(-1),
	math.NaN(),
}

var float32Specials = []float32{
	0,
	float32(math.Copysign(0, -1)),
	1,
	-1,
	math.SmallestNonzeroFloat32,
	math.MaxFloat32,
	float32(math.Inf(1)),
	float32(math.Inf(-1)),
	float32(math.NaN()),
}

// Floats64 returns the built-in source for Float64 values. It mixes uniform
// bit patterns with the special-value table, so infinities and NaN occur;
// wrap with Finite to exclude them.
func Floats64() Source {
	return func(s *draw.Source) (any, error) {
		if s.Chance(floatSpecialChance) {
			return draw.SampleFrom(s, float64Specials)
		}
		return math.Float64frombits(s.Uint64()), nil
	}
}

// Floats32 returns the built-in source for Float32 values.
func Floats32() Source {
	return func(s *draw.Source) (any, error) {
		if s.Chance(floatSpecialChance) {
			return draw.SampleFrom(s, float32Specials)
		}
		return math.Float32frombits(uint32(s.Uint64())), nil
	}
}

const maxStringLen = 8

var stringAlphabet = []rune("abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	` _-.!?"'` +
	"éüßøñ世界をй")

// Strings returns the built-in source for Utf8 values: strings of up to 8
// runes over a mixed ASCII and multibyte alphabet, empty string included.
func Strings() Source {
	return func(s *draw.Source) (any, error) {
		n := s.IntBetween(0, maxStringLen)
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteRune(stringAlphabet[s.IntN(len(stringAlphabet))])
		}
		return b.String(), nil
	}
}

var categoryTokens = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
}

// Categories returns the built-in source for Categorical values. It mostly
// reuses a small token pool so dictionaries see repeated values, with an
// escape hatch into arbitrary strings so uniqueness constraints beyond the
// pool size can still be satisfied.
func Categories() Source {
	arbitrary := Strings()
	return func(s *draw.Source) (any, error) {
		if s.Chance(0.25) {
			return arbitrary(s)
		}
		return draw.SampleFrom(s, categoryTokens)
	}
}

// Days since the Unix epoch for 0001-01-01 and 9999-12-31, the calendar
// range the engine's Date type accepts.
const (
	minDateDays = -719162
	maxDateDays = 2932896
)

// Dates returns the built-in source for Date values.
func Dates() Source {
	return func(s *draw.Source) (any, error) {
		return Date(s.IntBetween(minDateDays, maxDateDays)), nil
	}
}

const nanosPerDay = 24 * 60 * 60 * 1_000_000_000

// Times returns the built-in source for Time values, covering the full
// [00:00:00, 24:00:00) range at nanosecond resolution.
func Times() Source {
	return func(s *draw.Source) (any, error) {
		return TimeOfDay(s.IntBetween(0, nanosPerDay-1)), nil
	}
}

// Datetimes returns the built-in source for Datetime values. Instants span
// the full nanosecond-representable range (years 1677 through 2262), so the
// same drawn value stays valid whichever time unit the column resolves to.
func Datetimes() Source {
	return func(s *draw.Source) (any, error) {
		return time.Unix(0, s.Int64()).UTC(), nil
	}
}

// Durations returns the built-in source for Duration values.
func Durations() Source {
	return func(s *draw.Source) (any, error) {
		return time.Duration(s.Int64()), nil
	}
}

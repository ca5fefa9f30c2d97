// Package value provides elementary randomized scalar generators and the
// registry that maps each data type to its built-in generator. A Source is
// the unit of composition: column specs carry one, the registry resolves one
// per dtype, and combinators (Just, OneOf, Filtered) build new ones out of
// existing ones.
package value

import (
	"fmt"
	"math"
	"time"

	"github.com/bertiewooster/polars/pkg/draw"
)

// Source produces one randomized scalar per call. All randomness must come
// from the supplied draw.Source so that seeded runs reproduce exactly.
// A Source may return nil to mean a missing value.
type Source func(s *draw.Source) (any, error)

// filterBudget bounds consecutive rejected draws in Filtered and in
// uniqueness-constrained list drawing before giving up with
// draw.ErrExhausted.
const filterBudget = 100

// Date is a calendar date carried as days since the Unix epoch. It exists as
// a named type so that sample-based dtype inference can tell a date apart
// from a plain int32.
type Date int32

// Time returns the midnight UTC instant of the date.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// TimeOfDay is a clock time carried as nanoseconds since midnight, in
// [0, 24h). Like Date, it is a named type so inference can distinguish it
// from a plain int64.
type TimeOfDay int64

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

func (t TimeOfDay) String() string {
	return time.Unix(0, int64(t)).UTC().Format("15:04:05.999999999")
}

// Just returns a Source that always produces v.
func Just(v any) Source {
	return func(*draw.Source) (any, error) { return v, nil }
}

// OneOf returns a Source drawing uniformly from the given values.
func OneOf(vals ...any) Source {
	return func(s *draw.Source) (any, error) {
		return draw.SampleFrom(s, vals)
	}
}

// Filtered wraps src so that only values satisfying keep are produced.
// Draws are retried up to a fixed budget; a keep that rejects everything
// surfaces draw.ErrExhausted instead of hanging.
func Filtered(src Source, keep func(any) bool) Source {
	return func(s *draw.Source) (any, error) {
		for i := 0; i < filterBudget; i++ {
			v, err := src(s)
			if err != nil {
				return nil, err
			}
			if keep(v) {
				return v, nil
			}
		}
		return nil, fmt.Errorf("value: no draw satisfied the filter after %d attempts: %w", filterBudget, draw.ErrExhausted)
	}
}

// Finite wraps src so that non-finite floats (NaN and both infinities) are
// rejected. Non-float values pass through untouched, so it is safe to apply
// regardless of dtype.
func Finite(src Source) Source {
	return Filtered(src, func(v any) bool {
		switch f := v.(type) {
		case float64:
			return !math.IsInf(f, 0) && !math.IsNaN(f)
		case float32:
			f64 := float64(f)
			return !math.IsInf(f64, 0) && !math.IsNaN(f64)
		default:
			return true
		}
	})
}

// DrawList draws n values from src. With unique set, values must be pairwise
// distinct; a source whose value space is too small to fill n distinct slots
// surfaces draw.ErrExhausted.
func DrawList(s *draw.Source, src Source, n int, unique bool) ([]any, error) {
	if n <= 0 {
		return []any{}, nil
	}
	vals := make([]any, 0, n)
	if !unique {
		for i := 0; i < n; i++ {
			v, err := src(s)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return vals, nil
	}

	seen := make(map[any]struct{}, n)
	misses := 0
	for len(vals) < n {
		v, err := src(s)
		if err != nil {
			return nil, err
		}
		k := uniqueKey(v)
		if _, dup := seen[k]; dup {
			misses++
			if misses >= filterBudget {
				return nil, fmt.Errorf("value: could not draw %d unique values (stalled at %d): %w", n, len(vals), draw.ErrExhausted)
			}
			continue
		}
		seen[k] = struct{}{}
		vals = append(vals, v)
		misses = 0
	}
	return vals, nil
}

// nanKey stands in for NaN in the seen set: NaN never compares equal to
// itself, so without the substitute every NaN would count as fresh.
type nanKey struct{ wide bool }

// uniqueKey normalizes a drawn value into something usable as a map key.
// Instants are keyed by their epoch offset, and values Go cannot compare
// (nested lists from custom sources) fall back to a printed form.
func uniqueKey(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nanKey{wide: true}
		}
		return x
	case float32:
		if math.IsNaN(float64(x)) {
			return nanKey{}
		}
		return x
	case time.Time:
		return x.UnixNano()
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		time.Duration, Date, TimeOfDay:
		return x
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

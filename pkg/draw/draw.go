// Package draw is the randomness substrate every generator draws through.
// A Source wraps a seeded PRNG so that one seed reproduces one sequence of
// draws exactly; anything a strategy randomizes must flow through its Source,
// which is what keeps re-draws (and externally-driven shrinking of specs)
// inside the declared constraints.
package draw

import (
	"errors"
	"math/rand/v2"
	"time"
)

// ErrExhausted is returned when a bounded retry loop (filtered or
// uniqueness-constrained drawing) runs out of attempts. Callers wrap it with
// context; use errors.Is to detect it.
var ErrExhausted = errors.New("draw: retry budget exhausted")

// Source is a seeded randomness source for one generation run.
// It is not safe for concurrent use; create one Source per goroutine.
type Source struct {
	rng  *rand.Rand
	seed uint64
}

// NewSource creates a Source from the given seed. A zero seed picks a
// time-based one, which is then retrievable via Seed for reproduction.
func NewSource(seed uint64) *Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Source{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Seed returns the seed this Source was created with, for logging failing
// draws so they can be replayed.
func (s *Source) Seed() uint64 { return s.seed }

// IntBetween returns a uniform int in [lo, hi], inclusive on both ends.
// Panics if hi < lo; range validity is a spec-level concern checked before
// drawing starts.
func (s *Source) IntBetween(lo, hi int) int {
	if hi < lo {
		panic("draw: IntBetween called with hi < lo")
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// IntN returns a uniform int in [0, n). Panics if n <= 0.
func (s *Source) IntN(n int) int { return s.rng.IntN(n) }

// Uint64 returns a uniform 64-bit value.
func (s *Source) Uint64() uint64 { return s.rng.Uint64() }

// Int64 returns a uniform 64-bit signed value over the full range.
func (s *Source) Int64() int64 { return int64(s.rng.Uint64()) }

// Float64 returns a uniform float64 in [0, 1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// Bool returns a fair coin flip.
func (s *Source) Bool() bool { return s.rng.Uint64()&1 == 1 }

// Chance returns true with probability p. p <= 0 never fires, p >= 1 always
// does.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// SampleFrom returns a uniformly chosen element of items.
func SampleFrom[T any](s *Source, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, errors.New("draw: cannot sample from an empty set")
	}
	return items[s.rng.IntN(len(items))], nil
}

// Shuffle permutes items in place.
func Shuffle[T any](s *Source, items []T) {
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

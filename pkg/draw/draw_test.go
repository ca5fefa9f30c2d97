package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource_Deterministic(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)

	for i := 0; i < 64; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64(), "draw %d diverged for identical seeds", i)
	}
}

func TestNewSource_SeedsDiffer(t *testing.T) {
	a := NewSource(1)
	b := NewSource(2)

	same := true
	for i := 0; i < 16; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
			break
		}
	}
	assert.False(t, same, "expected different seeds to produce different sequences")
}

func TestNewSource_ZeroSeedPicksOne(t *testing.T) {
	s := NewSource(0)
	assert.NotZero(t, s.Seed(), "expected a zero seed to be replaced")
}

func TestSource_Seed(t *testing.T) {
	assert.Equal(t, uint64(42), NewSource(42).Seed(), "expected seed to round-trip")
}

func TestIntBetween_Bounds(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 200; i++ {
		got := s.IntBetween(-3, 7)
		assert.GreaterOrEqual(t, got, -3, "value below lower bound")
		assert.LessOrEqual(t, got, 7, "value above upper bound")
	}
}

func TestIntBetween_SingleValue(t *testing.T) {
	s := NewSource(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 5, s.IntBetween(5, 5), "degenerate range must return its only value")
	}
}

func TestIntBetween_InclusiveEnds(t *testing.T) {
	s := NewSource(7)
	seen := make(map[int]bool)
	for i := 0; i < 128; i++ {
		seen[s.IntBetween(0, 1)] = true
	}
	assert.True(t, seen[0], "expected lower end to be drawn")
	assert.True(t, seen[1], "expected upper end to be drawn")
}

func TestIntBetween_Panics(t *testing.T) {
	s := NewSource(7)
	assert.Panics(t, func() { s.IntBetween(3, 2) }, "expected panic for inverted range")
}

func TestFloat64_Range(t *testing.T) {
	s := NewSource(11)
	for i := 0; i < 200; i++ {
		f := s.Float64()
		assert.GreaterOrEqual(t, f, 0.0, "value below range")
		assert.Less(t, f, 1.0, "value above range")
	}
}

func TestBool_BothValues(t *testing.T) {
	s := NewSource(13)
	var trues, falses int
	for i := 0; i < 128; i++ {
		if s.Bool() {
			trues++
		} else {
			falses++
		}
	}
	assert.NotZero(t, trues, "expected at least one true")
	assert.NotZero(t, falses, "expected at least one false")
}

func TestChance_Extremes(t *testing.T) {
	s := NewSource(17)
	for i := 0; i < 50; i++ {
		assert.False(t, s.Chance(0), "Chance(0) must never fire")
		assert.True(t, s.Chance(1), "Chance(1) must always fire")
		assert.False(t, s.Chance(-0.5), "negative probability must never fire")
		assert.True(t, s.Chance(1.5), "probability above one must always fire")
	}
}

func TestChance_Mixed(t *testing.T) {
	s := NewSource(19)
	var hits int
	for i := 0; i < 256; i++ {
		if s.Chance(0.5) {
			hits++
		}
	}
	assert.Greater(t, hits, 0, "expected some hits at p=0.5")
	assert.Less(t, hits, 256, "expected some misses at p=0.5")
}

func TestSampleFrom(t *testing.T) {
	s := NewSource(23)
	items := []string{"a", "b", "c"}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		got, err := SampleFrom(s, items)
		require.NoError(t, err, "unexpected error")
		assert.Contains(t, items, got, "sample outside the set")
		seen[got] = true
	}
	assert.Len(t, seen, 3, "expected every member to be drawn eventually")
}

func TestSampleFrom_Singleton(t *testing.T) {
	s := NewSource(23)
	got, err := SampleFrom(s, []int{9})
	require.NoError(t, err, "unexpected error")
	assert.Equal(t, 9, got, "singleton sample must return its only member")
}

func TestSampleFrom_Empty(t *testing.T) {
	s := NewSource(23)
	_, err := SampleFrom(s, []int{})
	require.Error(t, err, "expected error for empty set")
}

func TestShuffle(t *testing.T) {
	s := NewSource(29)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(s, items)

	counts := make(map[int]int)
	for _, v := range items {
		counts[v]++
	}
	for v := 1; v <= 8; v++ {
		assert.Equal(t, 1, counts[v], "value %d lost or duplicated by shuffle", v)
	}
}

func TestShuffle_Deterministic(t *testing.T) {
	a := []int{1, 2, 3, 4, 5, 6, 7, 8}
	b := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(NewSource(31), a)
	Shuffle(NewSource(31), b)
	assert.Equal(t, a, b, "expected identical seeds to shuffle identically")
}

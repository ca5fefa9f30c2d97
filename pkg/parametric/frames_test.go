package parametric

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/draw"
	"github.com/bertiewooster/polars/pkg/frame"
	"github.com/bertiewooster/polars/pkg/value"
)

// recordingSink keeps every record it receives.
type recordingSink struct {
	recs []FailureRecord
}

func (s *recordingSink) Record(rec FailureRecord) error {
	s.recs = append(s.recs, rec)
	return nil
}

// failingSink always refuses the record.
type failingSink struct{}

func (failingSink) Record(FailureRecord) error {
	return errors.New("sink closed")
}

func drawFrame(t *testing.T, gen *FrameGen, src *draw.Source) *frame.Frame {
	t.Helper()
	res, err := gen.Draw(src)
	require.NoError(t, err, "unexpected error")
	f, err := res.Collect()
	require.NoError(t, err, "unexpected error")
	return f
}

func TestFrameGen_Deterministic(t *testing.T) {
	spec := FrameSpec{
		AllowedDTypes: []datatype.DType{datatype.Int64, datatype.Utf8, datatype.Boolean},
		MaxCols:       Ptr(4),
	}
	first, err := Frames(spec)
	require.NoError(t, err, "unexpected error")
	second, err := Frames(spec)
	require.NoError(t, err, "unexpected error")

	a := drawFrame(t, first, draw.NewSource(42))
	b := drawFrame(t, second, draw.NewSource(42))

	assert.True(t, a.Schema().Equal(b.Schema()), "same seed must reproduce the schema")
	assert.Equal(t, a.Rows(), b.Rows(), "same seed must reproduce the rows")
}

func TestFrameGen_ExactSize(t *testing.T) {
	gen, err := Frames(FrameSpec{Size: Ptr(5)})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(1)
	for i := 0; i < 10; i++ {
		f := drawFrame(t, gen, src)
		assert.Equal(t, 5, f.NumRows())
	}
}

func TestFrameGen_SizeRange(t *testing.T) {
	gen, err := Frames(FrameSpec{MinSize: Ptr(2), MaxSize: Ptr(4)})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(2)
	for i := 0; i < 20; i++ {
		f := drawFrame(t, gen, src)
		assert.GreaterOrEqual(t, f.NumRows(), 2, "row count below the requested minimum")
		assert.LessOrEqual(t, f.NumRows(), 4, "row count above the requested maximum")
	}
}

func TestFrameGen_ColumnRange(t *testing.T) {
	gen, err := Frames(FrameSpec{MinCols: Ptr(2), MaxCols: Ptr(5)})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(3)
	for i := 0; i < 20; i++ {
		f := drawFrame(t, gen, src)
		assert.GreaterOrEqual(t, f.NumCols(), 2)
		assert.LessOrEqual(t, f.NumCols(), 5)
	}
}

func TestFrameGen_FixedColumnCount(t *testing.T) {
	gen, err := Frames(FrameSpec{NCols: Ptr(3)})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(4)
	f := drawFrame(t, gen, src)
	assert.Equal(t, 3, f.NumCols())
	assert.Equal(t, []string{"col0", "col1", "col2"}, f.Schema().Names())
}

func TestFrameGen_ZeroColumns(t *testing.T) {
	gen, err := Frames(FrameSpec{NCols: Ptr(0)})
	require.NoError(t, err, "unexpected error")

	f := drawFrame(t, gen, draw.NewSource(5))
	assert.Equal(t, 0, f.NumCols())
	assert.Equal(t, 0, f.NumRows())
}

func TestFrameGen_SizedFramesKeepAColumn(t *testing.T) {
	// An explicit row constraint floors the automatic column minimum at
	// one, so the rows have somewhere to live.
	gen, err := Frames(FrameSpec{
		MinCols: Ptr(0),
		MaxCols: Ptr(0),
		MinSize: Ptr(1),
		MaxSize: Ptr(3),
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(6)
	for i := 0; i < 10; i++ {
		f := drawFrame(t, gen, src)
		assert.Equal(t, 1, f.NumCols(), "sized frames must keep at least one column")
		assert.GreaterOrEqual(t, f.NumRows(), 1)
		assert.LessOrEqual(t, f.NumRows(), 3)
	}
}

func TestFrameGen_AllowedDTypes(t *testing.T) {
	gen, err := Frames(FrameSpec{
		AllowedDTypes: []datatype.DType{datatype.Int64, datatype.Boolean},
		MinCols:       Ptr(1),
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(7)
	for i := 0; i < 20; i++ {
		f := drawFrame(t, gen, src)
		for _, field := range f.Schema() {
			base := field.DType.Base()
			assert.True(t, base == datatype.Int64 || base == datatype.Boolean,
				"column %q drew dtype %s outside the allowed set", field.Name, field.DType)
		}
	}
}

func TestFrameGen_ExcludedDTypes(t *testing.T) {
	gen, err := Frames(FrameSpec{
		ExcludedDTypes: []datatype.DType{datatype.Utf8, datatype.Categorical},
		MinCols:        Ptr(1),
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(8)
	for i := 0; i < 20; i++ {
		f := drawFrame(t, gen, src)
		for _, field := range f.Schema() {
			base := field.DType.Base()
			assert.NotEqual(t, datatype.Utf8, base)
			assert.NotEqual(t, datatype.Categorical, base)
		}
	}
}

func TestFrameGen_ExplicitColumns(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "id", DType: datatype.Int64},
			{Name: "label", DType: datatype.Utf8},
		},
		Size: Ptr(4),
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(9)
	for i := 0; i < 10; i++ {
		f := drawFrame(t, gen, src)
		assert.Equal(t, []string{"id", "label"}, f.Schema().Names())
		assert.Equal(t, datatype.Int64, f.Schema()[0].DType)
		assert.Equal(t, datatype.Utf8, f.Schema()[1].DType)
		assert.Equal(t, 4, f.NumRows())
	}
}

func TestFrameGen_IncludeCols(t *testing.T) {
	gen, err := Frames(FrameSpec{
		NCols:       Ptr(2),
		IncludeCols: []Column{{Name: "extra", DType: datatype.Utf8}},
		Size:        Ptr(2),
	})
	require.NoError(t, err, "unexpected error")

	f := drawFrame(t, gen, draw.NewSource(10))
	assert.Equal(t, 3, f.NumCols())
	assert.Equal(t, "extra", f.Schema()[2].Name)
	assert.Equal(t, datatype.Utf8, f.Schema()[2].DType)
}

func TestFrameGen_ExplicitColumnsResolveOnce(t *testing.T) {
	// A column with neither dtype nor source picks its dtype when the
	// generator is built, so every draw shares one schema. The registry
	// sticks to unit-free dtypes to keep the pick fully observable.
	reg := value.NewRegistry()
	reg.Register(datatype.Int64, value.Ints64())
	reg.Register(datatype.Utf8, value.Strings())
	reg.Register(datatype.Boolean, value.Booleans())

	gen, err := Frames(FrameSpec{
		Columns:  []Column{{Name: "a"}},
		Size:     Ptr(2),
		Registry: reg,
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(11)
	first := drawFrame(t, gen, src)
	for i := 0; i < 20; i++ {
		f := drawFrame(t, gen, src)
		assert.True(t, first.Schema().Equal(f.Schema()),
			"schema changed between draws: %v vs %v", first.Schema(), f.Schema())
	}
}

func TestFrameGen_GlobalNullProbability(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "a", DType: datatype.Int64},
			{Name: "b", DType: datatype.Utf8},
		},
		Size:            Ptr(6),
		NullProbability: Ptr(1.0),
	})
	require.NoError(t, err, "unexpected error")

	f := drawFrame(t, gen, draw.NewSource(12))
	for _, row := range f.Rows() {
		for _, v := range row {
			assert.Nil(t, v, "every value must be null at p=1")
		}
	}
}

func TestFrameGen_PerColumnNullProbability(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "a", DType: datatype.Int64},
			{Name: "b", DType: datatype.Int64},
		},
		Size:              Ptr(6),
		NullProbabilities: map[string]float64{"a": 1},
	})
	require.NoError(t, err, "unexpected error")

	f := drawFrame(t, gen, draw.NewSource(13))
	a, err := f.Column("a")
	require.NoError(t, err, "unexpected error")
	b, err := f.Column("b")
	require.NoError(t, err, "unexpected error")
	assert.Equal(t, 6, a.NullCount(), "mapped column must be fully null")
	assert.Zero(t, b.NullCount(), "unmapped column keeps the zero default")
}

func TestFrameGen_NullProbabilityPrecedence(t *testing.T) {
	// The per-column map entry beats the frame-wide default.
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "a", DType: datatype.Int64},
			{Name: "b", DType: datatype.Int64},
		},
		Size:              Ptr(6),
		NullProbability:   Ptr(1.0),
		NullProbabilities: map[string]float64{"a": 0},
	})
	require.NoError(t, err, "unexpected error")

	f := drawFrame(t, gen, draw.NewSource(14))
	a, err := f.Column("a")
	require.NoError(t, err, "unexpected error")
	b, err := f.Column("b")
	require.NoError(t, err, "unexpected error")
	assert.Zero(t, a.NullCount(), "map entry must override the frame-wide default")
	assert.Equal(t, 6, b.NullCount())
}

func TestFrameGen_ChunkedForced(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "a", DType: datatype.Int64},
			{Name: "b", DType: datatype.Utf8},
		},
		Size:    Ptr(4),
		Chunked: Ptr(true),
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(15)
	for i := 0; i < 10; i++ {
		f := drawFrame(t, gen, src)
		for _, s := range f.Columns() {
			assert.Equal(t, 2, s.NumChunks(), "column %q must split at the shared row", s.Name())
		}
		assert.Equal(t, 4, f.NumRows())
	}
}

func TestFrameGen_ChunkedDisabled(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{{Name: "a", DType: datatype.Int64}},
		MinSize: Ptr(1),
		Chunked: Ptr(false),
	})
	require.NoError(t, err, "unexpected error")

	src := draw.NewSource(16)
	for i := 0; i < 20; i++ {
		f := drawFrame(t, gen, src)
		for _, s := range f.Columns() {
			assert.Equal(t, 1, s.NumChunks(), "fragmentation was disabled")
		}
	}
}

func TestFrameGen_Lazy(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{{Name: "a", DType: datatype.Int64}},
		Size:    Ptr(3),
		Lazy:    true,
	})
	require.NoError(t, err, "unexpected error")

	res, err := gen.Draw(draw.NewSource(17))
	require.NoError(t, err, "unexpected error")

	lf, ok := res.(*frame.LazyFrame)
	require.True(t, ok, "expected *frame.LazyFrame, got %T", res)
	f, err := lf.Collect()
	require.NoError(t, err, "unexpected error")
	assert.Equal(t, 3, f.NumRows())
}

func TestFrameGen_Eager(t *testing.T) {
	gen, err := Frames(FrameSpec{
		Columns: []Column{{Name: "a", DType: datatype.Int64}},
		Size:    Ptr(3),
	})
	require.NoError(t, err, "unexpected error")

	res, err := gen.Draw(draw.NewSource(18))
	require.NoError(t, err, "unexpected error")
	_, ok := res.(*frame.Frame)
	require.True(t, ok, "expected *frame.Frame, got %T", res)
}

func TestFrameGen_FailureReporting(t *testing.T) {
	var buf bytes.Buffer
	sink := &recordingSink{}
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "x", DType: datatype.Int64},
			{Name: "x", DType: datatype.Utf8},
		},
		Size:     Ptr(2),
		ReproTo:  &buf,
		Failures: sink,
	})
	require.NoError(t, err, "unexpected error")

	_, err = gen.Draw(draw.NewSource(19))
	require.Error(t, err, "duplicate column names must fail construction")

	var dup frame.DuplicateColumnError
	assert.True(t, errors.As(err, &dup), "expected DuplicateColumnError, got %T", err)
	assert.Equal(t, "x", dup.Name)

	out := buf.String()
	assert.Contains(t, out, "// failed frame init")
	assert.Contains(t, out, "frame.Construct(")

	require.Len(t, sink.recs, 1, "expected exactly one record")
	assert.Equal(t, uint64(19), sink.recs[0].Seed)
	assert.Equal(t, out, sink.recs[0].Repro)
	assert.NotEmpty(t, sink.recs[0].Err)
	assert.False(t, sink.recs[0].Time.IsZero())
}

func TestFrameGen_FailureDedup(t *testing.T) {
	var buf bytes.Buffer
	sink := &recordingSink{}
	gen, err := Frames(FrameSpec{
		Columns: []Column{
			{Name: "x", DType: datatype.Int64},
			{Name: "x", DType: datatype.Utf8},
		},
		Size:     Ptr(2),
		ReproTo:  &buf,
		Failures: sink,
	})
	require.NoError(t, err, "unexpected error")

	_, err = gen.Draw(draw.NewSource(20))
	require.Error(t, err, "expected construction failure")
	_, err = gen.Draw(draw.NewSource(20))
	require.Error(t, err, "expected the same failure again")

	assert.Equal(t, 1, strings.Count(buf.String(), "// failed frame init"),
		"identical reproductions must print once per failure streak")
	assert.Len(t, sink.recs, 1, "identical reproductions must record once")
}

func TestFrames_InvalidGlobalNullProbability(t *testing.T) {
	_, err := Frames(FrameSpec{NullProbability: Ptr(1.5)})
	require.Error(t, err, "expected error for probability above one")

	var invalid InvalidNullProbabilityError
	assert.True(t, errors.As(err, &invalid), "expected InvalidNullProbabilityError, got %T", err)
	assert.Equal(t, 1.5, invalid.Value)
}

func TestFrames_InvalidMappedNullProbability(t *testing.T) {
	_, err := Frames(FrameSpec{NullProbabilities: map[string]float64{"x": -0.1}})
	require.Error(t, err, "expected error for negative probability")

	var invalid InvalidNullProbabilityError
	assert.True(t, errors.As(err, &invalid), "expected InvalidNullProbabilityError, got %T", err)
}

func TestFrames_InvalidColumnNullProbability(t *testing.T) {
	_, err := Frames(FrameSpec{
		Columns: []Column{{Name: "a", DType: datatype.Int64, NullProbability: Ptr(2.0)}},
	})
	require.Error(t, err, "expected error for probability above one")

	var invalid InvalidNullProbabilityError
	assert.True(t, errors.As(err, &invalid), "expected InvalidNullProbabilityError, got %T", err)
}

func TestFrames_UnsupportedColumnDType(t *testing.T) {
	reg := value.NewRegistry()
	reg.Register(datatype.Int64, value.Ints64())

	_, err := Frames(FrameSpec{
		Columns:  []Column{{Name: "a", DType: datatype.Utf8}},
		Registry: reg,
	})
	require.Error(t, err, "expected error for dtype without a source")

	var unsupported UnsupportedDTypeError
	assert.True(t, errors.As(err, &unsupported), "expected UnsupportedDTypeError, got %T", err)
	assert.Equal(t, datatype.Utf8, unsupported.DType)
}

func TestFrames_EmptySelection(t *testing.T) {
	_, err := Frames(FrameSpec{
		AllowedDTypes:  []datatype.DType{datatype.Int64},
		ExcludedDTypes: []datatype.DType{datatype.Int64},
	})
	require.Error(t, err, "expected error when filters leave nothing")
	assert.ErrorContains(t, err, "nothing to draw from")
}

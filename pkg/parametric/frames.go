package parametric

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/draw"
	"github.com/bertiewooster/polars/pkg/frame"
	"github.com/bertiewooster/polars/pkg/value"
)

// FrameSpec declares the frames a FrameGen should draw.
type FrameSpec struct {
	// Columns declares the columns explicitly. Nil switches to automatic
	// mode, where a column count and per-column dtypes are drawn fresh for
	// every frame. Explicit columns resolve their dtypes once, when the
	// generator is built.
	Columns []Column

	// NCols fixes the automatic column count. Nil draws one from
	// [MinCols, MaxCols] (defaults 0 and MaxCols).
	NCols   *int
	MinCols *int
	MaxCols *int

	// Lazy wraps drawn frames for deferred evaluation.
	Lazy bool

	// Size fixes the row count exactly; otherwise it is drawn uniformly
	// from [MinSize, MaxSize] (defaults 0 and MaxDataSize). Setting Size or
	// MinSize floors the automatic column minimum at one, so sized frames
	// are never zero-column.
	Size    *int
	MinSize *int
	MaxSize *int

	// Chunked forces every drawn frame to carry two physical chunks per
	// column (true), forbids fragmentation everywhere (false), or lets each
	// column flip its own coin (nil).
	Chunked *bool

	// IncludeCols are appended after the primary column set.
	IncludeCols []Column

	// NullProbability is the frame-wide default null chance;
	// NullProbabilities overrides it per column name. A column's own
	// setting wins over both.
	NullProbability   *float64
	NullProbabilities map[string]float64

	// AllowInfinity controls non-finite float generation frame-wide. Nil
	// means true.
	AllowInfinity *bool

	// AllowedDTypes and ExcludedDTypes restrict automatic dtype selection.
	AllowedDTypes  []datatype.DType
	ExcludedDTypes []datatype.DType

	// Registry supplies value sources. Nil means value.Default().
	Registry *value.Registry

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// ReproTo receives failure reproduction blocks (default os.Stderr).
	ReproTo io.Writer

	// Failures, when set, additionally receives a structured record per
	// unique construction failure.
	Failures FailureSink
}

// FrameGen draws frames according to a validated FrameSpec. The generator
// carries the failure-reproduction session, so it is not safe for
// concurrent use; create one generator per goroutine.
type FrameGen struct {
	spec       FrameSpec
	reg        *value.Registry
	selectable []datatype.DType
	explicit   []Column
	include    []Column
	minCols    int
	maxCols    int
	log        *slog.Logger
	session    *session
}

// Frames validates the spec, resolves any explicitly declared columns, and
// builds a frame generator with a fresh failure-reproduction session.
func Frames(spec FrameSpec) (*FrameGen, error) {
	log := spec.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	reg := spec.Registry
	if reg == nil {
		reg = value.Default()
	}

	if spec.NullProbability != nil && (*spec.NullProbability < 0 || *spec.NullProbability > 1) {
		return nil, InvalidNullProbabilityError{Value: *spec.NullProbability}
	}
	for _, p := range spec.NullProbabilities {
		if p < 0 || p > 1 {
			return nil, InvalidNullProbabilityError{Value: p}
		}
	}

	g := &FrameGen{
		spec:    spec,
		reg:     reg,
		minCols: intOr(spec.MinCols, 0),
		maxCols: intOr(spec.MaxCols, MaxCols),
		log:     log,
	}

	// Column dtypes for explicit declarations resolve once per generator,
	// not once per frame, so repeated draws vary data rather than schema.
	rsrc := draw.NewSource(0)
	resolveAll := func(in []Column) ([]Column, error) {
		if in == nil {
			return nil, nil
		}
		out := make([]Column, len(in))
		copy(out, in)
		for i := range out {
			if err := out[i].validate(); err != nil {
				return nil, err
			}
			if err := out[i].resolve(rsrc, reg); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	var err error
	if g.explicit, err = resolveAll(spec.Columns); err != nil {
		return nil, err
	}
	if g.include, err = resolveAll(spec.IncludeCols); err != nil {
		return nil, err
	}

	if spec.Columns == nil {
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

		// Column floor: a frame with an explicit row-size constraint should
		// never come back zero-column.
		if spec.NCols == nil && (spec.Size != nil || spec.MinSize != nil) && g.minCols == 0 {
			g.minCols = 1
		}
		if g.maxCols < g.minCols {
			g.maxCols = g.minCols
		}
	}

	out := spec.ReproTo
	if out == nil {
		out = os.Stderr
	}
	g.session = newSession(out, spec.Failures, log)
	return g, nil
}

// Draw produces one frame (or its lazy wrapper). All randomness flows
// through src. Construction failures are reported through the session and
// returned unchanged.
func (g *FrameGen) Draw(src *draw.Source) (frame.Table, error) {
	cache := frame.NewStringCache()

	// Column set for this attempt.
	var cols []Column
	if g.explicit != nil {
		cols = make([]Column, len(g.explicit))
		copy(cols, g.explicit)
	} else {
		n := 0
		if g.spec.NCols != nil {
			n = *g.spec.NCols
		} else {
			n = src.IntBetween(g.minCols, g.maxCols)
		}
		dtypes := make([]datatype.DType, n)
		for i := range dtypes {
			dt, err := draw.SampleFrom(src, g.selectable)
			if err != nil {
				return nil, err
			}
			dtypes[i] = dt
		}
		built, err := BuildColumns(src, ColumnsSpec{Count: &n, DTypes: dtypes, Registry: g.reg})
		if err != nil {
			return nil, err
		}
		cols = built
	}
	cols = append(cols, g.include...)

	// One shared row count.
	size := 0
	if g.spec.Size != nil {
		size = *g.spec.Size
	} else {
		size = src.IntBetween(intOr(g.spec.MinSize, 0), intOr(g.spec.MaxSize, MaxDataSize))
	}

	// Fill unset names and null probabilities.
	for i := range cols {
		if cols[i].Name == "" {
			cols[i].Name = fmt.Sprintf("col%d", i)
		}
		resolveNullProbability(&cols[i], g.spec.NullProbability, g.spec.NullProbabilities)
	}

	// Draw one series per column against the shared size and cache.
	seriesList := make([]*frame.Series, len(cols))
	schema := make(frame.Schema, len(cols))
	for i, c := range cols {
		chunked := Ptr(false)
		if g.spec.Chunked == nil {
			chunked = Ptr(src.Bool())
		}
		sg, err := Series(SeriesSpec{
			Name:            c.Name,
			DType:           c.DType,
			Size:            Ptr(size),
			Source:          c.Source,
			NullProbability: *c.NullProbability,
			AllowInfinity:   g.spec.AllowInfinity,
			Unique:          c.Unique,
			Chunked:         chunked,
			Registry:        g.reg,
		})
		if err != nil {
			return nil, err
		}
		s, err := sg.draw(src, cache)
		if err != nil {
			return nil, err
		}
		seriesList[i] = s
		schema[i] = frame.Field{Name: s.Name(), DType: s.DType()}
	}

	// Construction path: column-major hands the chunked series straight to
	// the engine; row-major transposes the logical values and rebuilds.
	layout := frame.ColumnMajor
	if src.Bool() {
		layout = frame.RowMajor
	}

	var f *frame.Frame
	var err error
	if layout == frame.ColumnMajor {
		f, err = frame.FromSeries(seriesList, schema)
	} else {
		f, err = frame.Construct(rowData(seriesList, size), schema, frame.RowMajor, frame.WithStringCache(cache))
	}
	if err != nil {
		data := columnData(seriesList)
		if layout == frame.RowMajor {
			data = rowData(seriesList, size)
		}
		block := renderRepro(data, schema, layout)
		g.log.Debug("frame construction failed",
			"layout", layout.String(),
			"columns", len(cols),
			"rows", size,
			"error", err,
		)
		g.session.report(block, FailureRecord{
			Time:  time.Now(),
			Seed:  src.Seed(),
			Repro: block,
			Err:   err.Error(),
		})
		return nil, err
	}

	// Frame-level fragmentation applies after assembly so every column
	// splits at the same row.
	if boolOr(g.spec.Chunked, false) && size > 1 {
		top, bottom, serr := f.SplitAt(size / 2)
		if serr != nil {
			return nil, serr
		}
		if f, err = top.Vstack(bottom); err != nil {
			return nil, err
		}
	}

	g.session.clear()
	if g.spec.Lazy {
		return f.Lazy(), nil
	}
	return f, nil
}

// resolveNullProbability fills a still-unset column null probability from
// the two-tier frame policy: the per-column map entry wins, then the global
// scalar, then zero.
func resolveNullProbability(c *Column, global *float64, perColumn map[string]float64) {
	if c.NullProbability != nil {
		return
	}
	if p, ok := perColumn[c.Name]; ok {
		c.NullProbability = Ptr(p)
		return
	}
	if global != nil {
		c.NullProbability = Ptr(*global)
		return
	}
	c.NullProbability = Ptr(0.0)
}

func columnData(seriesList []*frame.Series) [][]any {
	data := make([][]any, len(seriesList))
	for i, s := range seriesList {
		data[i] = s.Values()
	}
	return data
}

func rowData(seriesList []*frame.Series, size int) [][]any {
	if len(seriesList) == 0 {
		return [][]any{}
	}
	columns := columnData(seriesList)
	rows := make([][]any, size)
	for r := range rows {
		row := make([]any, len(columns))
		for c := range columns {
			row[c] = columns[c][r]
		}
		rows[r] = row
	}
	return rows
}

// Package parametric generates randomized series and frames for
// property-based testing of the columnar engine. Callers declare what they
// need (column names, dtypes, sizes, null frequency, uniqueness) and leave
// the rest unset; the generators resolve every unset axis with seeded
// randomness so that one draw.Source seed reproduces one generated frame
// exactly.
//
// The two entry points are Series and Frames. Both validate their
// specification eagerly and return a generator whose Draw method produces
// one value per call:
//
//	gen, err := parametric.Frames(parametric.FrameSpec{
//		Columns: []parametric.Column{
//			{Name: "id", DType: datatype.Int64, Unique: true},
//			{Name: "score", DType: datatype.Float64},
//		},
//		Size: parametric.Ptr(5),
//	})
//	...
//	table, err := gen.Draw(draw.NewSource(1))
//
// When frame construction fails, the generator writes a reproduction block
// (a pasteable frame.Construct call) to its diagnostic writer exactly once
// per unique failure and returns the construction error unchanged.
package parametric

const (
	// MaxDataSize is the default upper bound on generated series and frame
	// lengths when no explicit size or range is given.
	MaxDataSize = 10

	// MaxCols is the default upper bound on generated column counts.
	MaxCols = 8

	// DefaultProbeLimit bounds how many samples dtype inference takes from a
	// custom value source before giving up.
	DefaultProbeLimit = 100
)

// Ptr returns a pointer to v, for filling optional spec fields inline.
func Ptr[T any](v T) *T { return &v }

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

package parametric

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bertiewooster/polars/pkg/datatype"
)

// ErrUnresolvableDType is returned when dtype inference exhausts its probe
// budget without seeing a usable sample. It is wrapped with probe context;
// use errors.Is to detect it.
var ErrUnresolvableDType = errors.New("unable to determine dtype for value source")

// InvalidNullProbabilityError reports a null probability outside [0, 1].
// It is raised by the generator constructors, before any drawing.
type InvalidNullProbabilityError struct {
	Value float64
}

func (e InvalidNullProbabilityError) Error() string {
	return fmt.Sprintf("parametric: null probability must be between 0.0 and 1.0, got %v", e.Value)
}

// CountMismatchError reports a dtype list whose length does not match the
// requested column count.
type CountMismatchError struct {
	DTypes  int
	Columns int
}

func (e CountMismatchError) Error() string {
	return fmt.Sprintf("parametric: given %d dtypes for %d columns", e.DTypes, e.Columns)
}

// UnsupportedDTypeError reports a requested dtype with no value source in
// the registry.
type UnsupportedDTypeError struct {
	DType     datatype.DType
	Available []datatype.DType
}

func (e UnsupportedDTypeError) Error() string {
	names := make([]string, len(e.Available))
	for i, dt := range e.Available {
		names[i] = dt.String()
	}
	return fmt.Sprintf("parametric: no value source available for dtype %s (available: %s)",
		e.DType, strings.Join(names, ", "))
}

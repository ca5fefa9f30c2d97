package frame

// Table is anything that can produce a concrete frame: an eager Frame
// returns itself, a LazyFrame runs its deferred operations.
type Table interface {
	Collect() (*Frame, error)
}

// LazyFrame defers operations against a source frame until Collect.
// LazyFrames are immutable; each operation returns a new one.
type LazyFrame struct {
	src *Frame
	ops []func(*Frame) (*Frame, error)
}

// Lazy wraps the frame for deferred evaluation.
func (f *Frame) Lazy() *LazyFrame {
	return &LazyFrame{src: f}
}

func (l *LazyFrame) with(op func(*Frame) (*Frame, error)) *LazyFrame {
	ops := make([]func(*Frame) (*Frame, error), len(l.ops), len(l.ops)+1)
	copy(ops, l.ops)
	return &LazyFrame{src: l.src, ops: append(ops, op)}
}

// Select defers a projection onto the named columns.
func (l *LazyFrame) Select(names ...string) *LazyFrame {
	return l.with(func(f *Frame) (*Frame, error) {
		return f.Select(names...)
	})
}

// Head defers truncation to the first n rows.
func (l *LazyFrame) Head(n int) *LazyFrame {
	return l.with(func(f *Frame) (*Frame, error) {
		return f.Head(n), nil
	})
}

// Collect runs the deferred operations in order and returns the resulting
// frame.
func (l *LazyFrame) Collect() (*Frame, error) {
	f := l.src
	for _, op := range l.ops {
		next, err := op(f)
		if err != nil {
			return nil, err
		}
		f = next
	}
	return f, nil
}

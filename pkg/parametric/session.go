package parametric

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zeebo/xxh3"
)

// FailureRecord captures one unique construction failure for persistence
// and later replay.
type FailureRecord struct {
	Time  time.Time
	Seed  uint64
	Repro string
	Err   string
}

// FailureSink receives unique construction failures. Sink errors are logged
// and do not mask the original construction error.
type FailureSink interface {
	Record(FailureRecord) error
}

// session owns the per-generator failure dedup state. It starts empty when
// the generator is built and is cleared again after any successful
// construction, so stale reproductions never outlive the failure streak
// that produced them.
type session struct {
	seen map[uint64]struct{}
	out  io.Writer
	sink FailureSink
	log  *slog.Logger
}

func newSession(out io.Writer, sink FailureSink, log *slog.Logger) *session {
	return &session{
		seen: make(map[uint64]struct{}),
		out:  out,
		sink: sink,
		log:  log,
	}
}

func (s *session) clear() {
	if len(s.seen) > 0 {
		s.seen = make(map[uint64]struct{})
	}
}

// report emits the reproduction block if it has not been seen this session
// and forwards the record to the sink when one is wired.
func (s *session) report(block string, rec FailureRecord) {
	key := xxh3.HashString(block)
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}

	_, _ = fmt.Fprint(s.out, block)
	if s.sink != nil {
		if err := s.sink.Record(rec); err != nil {
			s.log.Warn("recording construction failure", "error", err)
		}
	}
}

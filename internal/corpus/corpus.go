// Package corpus persists unique frame-construction failures in a bbolt
// database for later replay and triage.
package corpus

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	bolt "go.etcd.io/bbolt"

	"github.com/bertiewooster/polars/pkg/parametric"
)

var failuresBucket = []byte("failures")

// Failure is one persisted construction failure.
type Failure struct {
	ID    string    `json:"id"`
	Time  time.Time `json:"time"`
	Seed  uint64    `json:"seed"`
	Repro string    `json:"repro"`
	Err   string    `json:"err"`
}

// Store is a bbolt-backed failure corpus. It implements
// parametric.FailureSink. Entries are keyed by the hash of their
// reproduction block and are write-once, so replaying a known failure keeps
// the original record and timestamp.
type Store struct {
	db  *bolt.DB
	log *slog.Logger
}

// Open opens or creates the corpus database at path.
// If logger is nil, a discard logger is used.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("corpus: failed to open database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(failuresBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("corpus: failed to create bucket: %w", err)
	}

	return &Store{db: db, log: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one failure. A reproduction block already present in the
// corpus leaves the existing entry untouched.
func (s *Store) Record(rec parametric.FailureRecord) error {
	key := reproKey(rec.Repro)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(failuresBucket)
		if b.Get(key) != nil {
			return nil
		}

		f := Failure{
			ID:    uuid.New().String(),
			Time:  rec.Time,
			Seed:  rec.Seed,
			Repro: rec.Repro,
			Err:   rec.Err,
		}
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("corpus: failed to encode failure: %w", err)
		}

		s.log.Debug("recording construction failure", "id", f.ID, "seed", f.Seed)
		return b.Put(key, data)
	})
}

// List returns every stored failure, oldest first.
func (s *Store) List() ([]Failure, error) {
	var failures []Failure
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(failuresBucket)
		return b.ForEach(func(k, v []byte) error {
			var f Failure
			if err := json.Unmarshal(v, &f); err != nil {
				s.log.Warn("skipping corrupt corpus entry", "key", fmt.Sprintf("%x", k), "error", err)
				return nil
			}
			failures = append(failures, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Time.Before(failures[j].Time)
	})
	return failures, nil
}

// Get retrieves one failure by record ID.
func (s *Store) Get(id string) (*Failure, error) {
	failures, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range failures {
		if failures[i].ID == id {
			return &failures[i], nil
		}
	}
	return nil, fmt.Errorf("corpus: failure not found: %s", id)
}

// Len reports the number of stored failures.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(failuresBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes every stored failure.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(failuresBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(failuresBucket)
		return err
	})
}

// reproKey derives the bucket key for a reproduction block. The same hash
// the in-memory session dedupes with keys the persistent corpus.
func reproKey(block string) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, xxh3.HashString(block))
	return key
}

// Ensure Store implements parametric.FailureSink
var _ parametric.FailureSink = (*Store)(nil)

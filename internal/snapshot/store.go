// Package snapshot keeps the latest aggregation result in memory, keyed by a
// monotonically increasing cycle generation so a slow, stale cycle can never
// overwrite a newer one ("latest requested wins", not "latest completed").
package snapshot

import (
	"sync"
	"time"

	"github.com/terascope/go-disaster-intel/internal/models"
)

type Store struct {
	mu      sync.Mutex
	begun   uint64 // highest generation handed out
	current *models.AggregationResult
	takenAt time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Begin registers a new cycle and returns its generation. Beginning a cycle
// invalidates every older in-flight cycle.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begun++
	return s.begun
}

// Complete publishes a finished cycle's result. It reports false, discarding
// the result, when a newer cycle has been begun since gen was handed out.
func (s *Store) Complete(gen uint64, result *models.AggregationResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.begun {
		return false
	}
	s.current = result
	s.takenAt = time.Now()
	return true
}

// Latest returns the current snapshot and when it was taken. ok is false
// until the first cycle completes.
func (s *Store) Latest() (result *models.AggregationResult, takenAt time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.takenAt, s.current != nil
}

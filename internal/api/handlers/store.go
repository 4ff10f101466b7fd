package handlers

import (
	"sync"

	"expansion-prep/internal/pipeline"
)

// DefaultRunLimit is the number of snapshots a RunStore keeps.
const DefaultRunLimit = 64

// RunStore keeps the most recent snapshots by run id. The oldest run is
// dropped once the limit is reached.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]*pipeline.Snapshot
	order []string
	limit int
}

func NewRunStore(limit int) *RunStore {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	return &RunStore{runs: make(map[string]*pipeline.Snapshot), limit: limit}
}

func (s *RunStore) Put(snap *pipeline.Snapshot) {
	id := snap.RunID.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.runs[id] = snap
	for len(s.order) > s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *RunStore) Get(id string) (*pipeline.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.runs[id]
	return snap, ok
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

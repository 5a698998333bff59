package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/geocoder/internal/pipeline"
	"github.com/sells-group/geocoder/internal/table"
)

// Result is one finished geocoding run kept for download.
type Result struct {
	ID       string
	Filename string
	Table    *table.Table
	Report   *pipeline.Report
	Created  time.Time
}

// ResultStore keeps the most recent results in memory. When full, the oldest
// result is evicted. Nothing is persisted.
type ResultStore struct {
	mu    sync.RWMutex
	max   int
	byID  map[string]*Result
	order []string
	now   func() time.Time
}

// NewResultStore creates a store holding at most max results.
func NewResultStore(max int) *ResultStore {
	if max <= 0 {
		max = 1
	}
	return &ResultStore{
		max:  max,
		byID: make(map[string]*Result, max),
		now:  time.Now,
	}
}

// Put stores a result under a fresh id and returns it.
func (s *ResultStore) Put(filename string, t *table.Table, rep *pipeline.Report) *Result {
	res := &Result{
		ID:       uuid.NewString(),
		Filename: filename,
		Table:    t,
		Report:   rep,
		Created:  s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
	}
	s.byID[res.ID] = res
	s.order = append(s.order, res.ID)
	return res
}

// Get returns the result stored under id.
func (s *ResultStore) Get(id string) (*Result, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.byID[id]
	return res, ok
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

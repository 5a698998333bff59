package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocoder/internal/pipeline"
	"github.com/sells-group/geocoder/internal/table"
)

func TestResultStore_PutGet(t *testing.T) {
	s := NewResultStore(3)
	tbl, err := table.New([]string{"address"})
	require.NoError(t, err)

	res := s.Put("a.csv", tbl, &pipeline.Report{Rows: 0})
	got, ok := s.Get(res.ID)
	require.True(t, ok)
	assert.Same(t, res, got)
	assert.Equal(t, "a.csv", got.Filename)
	assert.False(t, got.Created.IsZero())

	_, ok = s.Get("not-a-uuid")
	assert.False(t, ok)
}

func TestResultStore_EvictsOldest(t *testing.T) {
	s := NewResultStore(2)
	first := s.Put("1.csv", nil, nil)
	second := s.Put("2.csv", nil, nil)
	third := s.Put("3.csv", nil, nil)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(first.ID)
	assert.False(t, ok, "oldest result is evicted")
	_, ok = s.Get(second.ID)
	assert.True(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)
}

func TestResultStore_MinimumCapacity(t *testing.T) {
	s := NewResultStore(0)
	s.Put("1.csv", nil, nil)
	last := s.Put("2.csv", nil, nil)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(last.ID)
	assert.True(t, ok)
}

func TestUploadLimiter_RefillsAndPrunes(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newUploadLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))

	// One token comes back every 30s at two per minute.
	now = now.Add(30 * time.Second)
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))

	now = now.Add(11 * time.Minute)
	assert.True(t, l.allow("b"))
	l.mu.Lock()
	_, stale := l.visitors["a"]
	l.mu.Unlock()
	assert.False(t, stale, "idle visitors are pruned")
}

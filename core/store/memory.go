package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/telework/core/model"
)

// MemoryStore keeps everything in memory for tests or one-off runs.
type MemoryStore struct {
	mu        sync.Mutex
	locations map[string]model.Location
	history   map[string][]HistoryEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: map[string]model.Location{},
		history:   map[string][]HistoryEntry{},
	}
}

func (s *MemoryStore) LookupLocation(_ context.Context, key string) (model.Location, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[key]
	return loc, ok, nil
}

func (s *MemoryStore) SaveLocation(_ context.Context, key string, loc model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[key] = loc
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, runID string, at time.Time, results []model.CommuteResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		s.history[r.EmployeeNumber] = append(s.history[r.EmployeeNumber], HistoryEntry{
			RunID:         runID,
			ComputedAt:    at.UTC(),
			CommuteResult: r,
		})
	}
	return nil
}

func (s *MemoryStore) History(_ context.Context, employee string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := append([]HistoryEntry(nil), s.history[employee]...)
	sort.SliceStable(res, func(i, j int) bool { return res[i].ComputedAt.Before(res[j].ComputedAt) })
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }

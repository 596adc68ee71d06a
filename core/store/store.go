// Package store defines persistence for geocoding results and commute
// history.
package store

import (
	"context"
	"time"

	"github.com/kilianp07/telework/core/model"
)

// Store caches geocoded addresses and keeps the results of each commute
// run.
type Store interface {
	// LookupLocation returns the cached location for an address key.
	LookupLocation(ctx context.Context, key string) (model.Location, bool, error)
	// SaveLocation inserts or replaces the cached location for key.
	SaveLocation(ctx context.Context, key string, loc model.Location) error
	// SaveRun records the results of a commute run.
	SaveRun(ctx context.Context, runID string, at time.Time, results []model.CommuteResult) error
	// History returns the recorded commutes of an employee, oldest first.
	History(ctx context.Context, employee string) ([]HistoryEntry, error)
	Close() error
}

// HistoryEntry is a commute result tagged with the run that computed it.
type HistoryEntry struct {
	RunID      string    `json:"run_id"`
	ComputedAt time.Time `json:"computed_at"`
	model.CommuteResult
}

// NopStore caches nothing.
type NopStore struct{}

func (NopStore) LookupLocation(context.Context, string) (model.Location, bool, error) {
	return model.Location{}, false, nil
}
func (NopStore) SaveLocation(context.Context, string, model.Location) error { return nil }
func (NopStore) SaveRun(context.Context, string, time.Time, []model.CommuteResult) error {
	return nil
}
func (NopStore) History(context.Context, string) ([]HistoryEntry, error) { return nil, nil }
func (NopStore) Close() error                                            { return nil }

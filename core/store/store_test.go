package store

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/telework/core/model"
)

func TestMemoryStore_Locations(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, ok, _ := s.LookupLocation(ctx, "k"); ok {
		t.Fatalf("unexpected hit")
	}
	loc := model.Location{MatchAddress: "a", Score: 98, Point: model.Point{X: 1, Y: 2}}
	if err := s.SaveLocation(ctx, "k", loc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := s.LookupLocation(ctx, "k")
	if err != nil || !ok || got != loc {
		t.Fatalf("lookup: %v %v %+v", err, ok, got)
	}
}

func TestMemoryStore_History(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	if err := s.SaveRun(ctx, "r2", now, []model.CommuteResult{{EmployeeNumber: "1", Miles: 12}}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := s.SaveRun(ctx, "r1", now.Add(-time.Hour), []model.CommuteResult{{EmployeeNumber: "1", Miles: 10}, {EmployeeNumber: "2"}}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	h, err := s.History(ctx, "1")
	if err != nil || len(h) != 2 {
		t.Fatalf("history: %v len=%d", err, len(h))
	}
	if h[0].RunID != "r1" || h[0].Miles != 10 || h[1].RunID != "r2" {
		t.Fatalf("unexpected order %+v", h)
	}
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ctx := context.Background()
	if err := s.SaveLocation(ctx, "k", model.Location{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.LookupLocation(ctx, "k"); ok {
		t.Fatalf("nop store returned a hit")
	}
	if h, _ := s.History(ctx, "1"); h != nil {
		t.Fatalf("nop store returned history")
	}
}

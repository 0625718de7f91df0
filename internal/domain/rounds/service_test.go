package rounds

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	rounds  map[string]Round
	config  map[string]ConfigEntry
	period  string
	windows map[string][2]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rounds:  map[string]Round{},
		config:  map[string]ConfigEntry{},
		windows: map[string][2]time.Time{},
	}
}

func (f *fakeStore) List(context.Context) ([]Round, error) {
	var out []Round
	for _, r := range f.rounds {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, code string) (Round, error) {
	r, ok := f.rounds[code]
	if !ok {
		return Round{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) GetConfig(_ context.Context, key string) (ConfigEntry, error) {
	e, ok := f.config[key]
	if !ok {
		return ConfigEntry{}, ErrConfigNotFound
	}
	return e, nil
}

func (f *fakeStore) PutConfig(_ context.Context, entry ConfigEntry) error {
	f.config[entry.Key] = entry
	return nil
}

func (f *fakeStore) OpenRound(_ context.Context, code string, at time.Time) (Round, error) {
	r := Round{Code: code, Status: StatusOpen, OpenedAt: at}
	f.rounds[code] = r
	f.config[ActiveRoundKey] = ConfigEntry{Key: ActiveRoundKey, Value: code, Description: activeDescription(code)}
	return r, nil
}

func (f *fakeStore) CloseRound(_ context.Context, code string, at time.Time) (Round, error) {
	r := f.rounds[code]
	r.Code = code
	r.Status = StatusClosed
	r.ClosedAt = &at
	f.rounds[code] = r
	return r, nil
}

func (f *fakeStore) CurrentPeriod(context.Context) (string, error) {
	return f.period, nil
}

func (f *fakeStore) SetCurrentPeriod(_ context.Context, period string) error {
	f.period = period
	return nil
}

func (f *fakeStore) PeriodWindow(_ context.Context, period string) (*time.Time, *time.Time, error) {
	w, ok := f.windows[period]
	if !ok {
		return nil, nil, nil
	}
	return &w[0], &w[1], nil
}

func (f *fakeStore) UpsertWindow(_ context.Context, period string, start, end time.Time) error {
	f.windows[period] = [2]time.Time{start, end}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, nil, "102025")
	svc.Now = fixedNow
	return svc
}

func TestOpenSetsActiveRound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.Open(context.Background(), "  "); !errors.Is(err, ErrRoundRequired) {
		t.Fatalf("expected round required, got %v", err)
	}

	r, err := svc.Open(context.Background(), " YE2025 ")
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	if r.Code != "YE2025" || r.Status != StatusOpen {
		t.Fatalf("unexpected round %+v", r)
	}

	active, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active error: %v", err)
	}
	if active.Code == nil || *active.Code != "YE2025" || active.Round == nil {
		t.Fatalf("unexpected active %+v", active)
	}
}

func TestCloseActive(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	if _, err := svc.CloseActive(context.Background()); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("expected no active round, got %v", err)
	}

	if _, err := svc.Open(context.Background(), "YE2025"); err != nil {
		t.Fatalf("open error: %v", err)
	}
	r, err := svc.CloseActive(context.Background())
	if err != nil {
		t.Fatalf("close error: %v", err)
	}
	if !r.Closed() || r.ClosedAt == nil {
		t.Fatalf("expected closed round, got %+v", r)
	}

	closed, err := svc.IsClosed(context.Background(), "YE2025")
	if err != nil || !closed {
		t.Fatalf("expected closed round, got %v %v", closed, err)
	}
	closed, err = svc.IsClosed(context.Background(), "MY2026")
	if err != nil || closed {
		t.Fatalf("expected unknown round writable, got %v %v", closed, err)
	}
}

func TestActiveWithoutConfig(t *testing.T) {
	svc := newTestService(newFakeStore())
	active, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active error: %v", err)
	}
	if active.Code != nil || active.Round != nil {
		t.Fatalf("expected empty active, got %+v", active)
	}
}

func TestActiveCodeWithoutRoundRow(t *testing.T) {
	store := newFakeStore()
	store.config[ActiveRoundKey] = ConfigEntry{Key: ActiveRoundKey, Value: "MY2026"}
	svc := newTestService(store)

	active, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active error: %v", err)
	}
	if active.Code == nil || *active.Code != "MY2026" || active.Round != nil {
		t.Fatalf("expected code without round row, got %+v", active)
	}
}

func TestPutConfigOnlyAcceptsActiveRound(t *testing.T) {
	svc := newTestService(newFakeStore())
	if _, err := svc.PutConfig(context.Background(), ConfigEntry{Key: "theme", Value: "dark"}); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	entry, err := svc.PutConfig(context.Background(), ConfigEntry{Value: "YE2025"})
	if err != nil {
		t.Fatalf("put config error: %v", err)
	}
	if entry.Key != ActiveRoundKey || entry.Description != "Active round: YE2025" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestCurrentPeriodFallsBackToDefault(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	period, err := svc.CurrentPeriod(context.Background())
	if err != nil || period != "102025" {
		t.Fatalf("expected default period, got %q %v", period, err)
	}

	if _, err := svc.SetCurrentPeriod(context.Background(), "2025-10"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
	if _, err := svc.SetCurrentPeriod(context.Background(), "042026"); err != nil {
		t.Fatalf("set period error: %v", err)
	}
	period, _ = svc.CurrentPeriod(context.Background())
	if period != "042026" {
		t.Fatalf("expected stored period, got %q", period)
	}
}

func TestWindowLifecycle(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	w, err := svc.Window(context.Background())
	if err != nil {
		t.Fatalf("window error: %v", err)
	}
	if w.Open || w.StartAt != nil || w.Period != "102025" {
		t.Fatalf("expected closed unconfigured window, got %+v", w)
	}

	w, err = svc.SetWindow(context.Background(), WindowRequest{StartAt: "2025-10-01T00:00:00Z", EndAt: "2025-10-31T23:59:59Z"})
	if err != nil {
		t.Fatalf("set window error: %v", err)
	}
	if !w.Open {
		t.Fatalf("expected open window, got %+v", w)
	}
	open, err := svc.WindowOpen(context.Background())
	if err != nil || !open {
		t.Fatalf("expected window open, got %v %v", open, err)
	}

	if _, err := svc.SetWindow(context.Background(), WindowRequest{StartAt: "2025-11-01", EndAt: "2025-10-01"}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected invalid window, got %v", err)
	}
}

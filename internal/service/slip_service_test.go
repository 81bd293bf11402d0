package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/wagerpool/betslip/internal/domain"
)

// memRecords is a thread-safe in-memory domain.SlipRecordStore.
type memRecords struct {
	mu    sync.Mutex
	saved map[string][]domain.Selection
}

func newMemRecords() *memRecords {
	return &memRecords{saved: make(map[string][]domain.Selection)}
}

func (m *memRecords) Save(ctx context.Context, userID string, selections []domain.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[userID] = append([]domain.Selection(nil), selections...)
	return nil
}

func (m *memRecords) Load(ctx context.Context, userID string, now time.Time) ([]domain.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh, dropped := domain.FilterStarted(m.saved[userID], now)
	if dropped > 0 {
		m.saved[userID] = append([]domain.Selection(nil), fresh...)
	}
	return fresh, nil
}

func (m *memRecords) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, userID)
	return nil
}

func (m *memRecords) get(userID string) []domain.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Selection(nil), m.saved[userID]...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sel(event string, start time.Time) domain.Selection {
	return domain.Selection{
		ID:       domain.MarketID(event, domain.BetTypeSpread, nil),
		EventID:  event,
		GameTime: start,
		BetType:  domain.BetTypeSpread,
		Outcome:  domain.OutcomeHome,
		Odds:     -110,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestMutationPersists(t *testing.T) {
	records := newMemRecords()
	svc := NewSlipService(records, testLogger())
	ctx := context.Background()

	if _, err := svc.AddOrToggle(ctx, "u1", sel("e1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("AddOrToggle: %v", err)
	}
	waitFor(t, func() bool { return len(records.get("u1")) == 1 })
}

func TestSessionRestoresPersistedSlip(t *testing.T) {
	records := newMemRecords()
	future := time.Now().Add(time.Hour)
	records.saved["u1"] = []domain.Selection{sel("e1", future), sel("e2", future)}

	svc := NewSlipService(records, testLogger())
	state, _, err := svc.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(state.Selections) != 2 {
		t.Fatalf("expected restored slip, got %+v", state)
	}
}

// A persisted selection whose event already started must not come back, and
// the record itself is rewritten without it.
func TestRestoreDropsStartedEvents(t *testing.T) {
	records := newMemRecords()
	records.saved["u1"] = []domain.Selection{
		sel("old", time.Now().Add(-time.Minute)),
		sel("new", time.Now().Add(time.Hour)),
	}

	svc := NewSlipService(records, testLogger())
	state, _, err := svc.Snapshot(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(state.Selections) != 1 || state.Selections[0].EventID != "new" {
		t.Fatalf("stale selection resurrected: %+v", state.Selections)
	}
	if saved := records.get("u1"); len(saved) != 1 || saved[0].EventID != "new" {
		t.Fatalf("record not rewritten after filtering: %+v", saved)
	}
}

func TestClearDeletesRecord(t *testing.T) {
	records := newMemRecords()
	svc := NewSlipService(records, testLogger())
	ctx := context.Background()

	svc.AddOrToggle(ctx, "u1", sel("e1", time.Now().Add(time.Hour)))
	waitFor(t, func() bool { return len(records.get("u1")) == 1 })

	if err := svc.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(records.get("u1")) != 0 {
		t.Fatal("expected persisted record deleted")
	}
	state, _, _ := svc.Snapshot(ctx, "u1")
	if len(state.Selections) != 0 {
		t.Fatal("expected empty slip")
	}
}

func TestApplyQuoteHitsMatchingSessions(t *testing.T) {
	svc := NewSlipService(nil, testLogger())
	ctx := context.Background()

	svc.AddOrToggle(ctx, "u1", sel("e1", time.Now().Add(time.Hour)))
	svc.AddOrToggle(ctx, "u2", sel("e1", time.Now().Add(time.Hour)))
	svc.AddOrToggle(ctx, "u3", sel("e9", time.Now().Add(time.Hour)))

	if n := svc.ApplyQuote("e1", domain.BetTypeSpread, nil, -125); n != 2 {
		t.Fatalf("expected 2 sessions updated, got %d", n)
	}

	state, _, _ := svc.Snapshot(ctx, "u1")
	if state.Selections[0].Odds != -125 {
		t.Fatalf("quote not applied: %+v", state.Selections[0])
	}
	state, _, _ = svc.Snapshot(ctx, "u3")
	if state.Selections[0].Odds != -110 {
		t.Fatalf("unrelated session touched: %+v", state.Selections[0])
	}
}

func TestActiveEventIDs(t *testing.T) {
	svc := NewSlipService(nil, testLogger())
	ctx := context.Background()

	svc.AddOrToggle(ctx, "u1", sel("e1", time.Now().Add(time.Hour)))
	svc.AddOrToggle(ctx, "u2", sel("e1", time.Now().Add(time.Hour)))
	svc.AddOrToggle(ctx, "u2", sel("e2", time.Now().Add(time.Hour)))

	ids := svc.ActiveEventIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct events, got %v", ids)
	}
}

// Package service coordinates the slip state machine with persistence: every
// mutation that changes the selection list triggers a best-effort background
// save, and a user's first touch restores their persisted slip.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/slip"
)

const persistTimeout = 5 * time.Second

// SlipService owns one slip store per active user session.
type SlipService struct {
	records domain.SlipRecordStore
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*slip.Store
}

// NewSlipService creates a SlipService. records may be nil, in which case
// slips live only in memory.
func NewSlipService(records domain.SlipRecordStore, logger *slog.Logger) *SlipService {
	return &SlipService{
		records:  records,
		logger:   logger.With(slog.String("component", "slip_service")),
		sessions: make(map[string]*slip.Store),
	}
}

// Session returns the user's slip store, restoring the persisted slip on
// first access. Selections whose event has started are dropped by the
// record store during load and never resurface.
func (s *SlipService) Session(ctx context.Context, userID string) (*slip.Store, error) {
	s.mu.Lock()
	if store, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		return store, nil
	}
	s.mu.Unlock()

	store := slip.New()
	if s.records != nil {
		selections, err := s.records.Load(ctx, userID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("service: restore slip for %s: %w", userID, err)
		}
		if len(selections) > 0 {
			store.ReplaceAll(selections)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent first access may have won; keep theirs.
	if existing, ok := s.sessions[userID]; ok {
		return existing, nil
	}
	s.sessions[userID] = store
	return store, nil
}

// AddOrToggle applies the toggle gesture and persists the new selection list.
func (s *SlipService) AddOrToggle(ctx context.Context, userID string, candidate domain.Selection) (slip.Change, error) {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return "", err
	}
	change := store.AddOrToggle(candidate)
	s.persistAsync(userID, store)
	return change, nil
}

// Remove deletes one selection and persists.
func (s *SlipService) Remove(ctx context.Context, userID, selectionID string) (bool, error) {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return false, err
	}
	removed := store.Remove(selectionID)
	if removed {
		s.persistAsync(userID, store)
	}
	return removed, nil
}

// Clear empties the slip and deletes the persisted record.
func (s *SlipService) Clear(ctx context.Context, userID string) error {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	store.Clear()
	if s.records != nil {
		if err := s.records.Clear(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "failed to clear persisted slip",
				slog.String("user", userID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// SetStake updates one straight-mode leg's stake. Stakes are slip-level
// metadata, not part of what the staleness filter guards, but they ride in
// the same record, so the save still runs.
func (s *SlipService) SetStake(ctx context.Context, userID, selectionID string, amount float64) error {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	store.SetStake(selectionID, amount)
	s.persistAsync(userID, store)
	return nil
}

// SetParlayStake updates the slip's parlay stake.
func (s *SlipService) SetParlayStake(ctx context.Context, userID string, amount float64) error {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	store.SetParlayStake(amount)
	return nil
}

// SetMode switches the staking mode.
func (s *SlipService) SetMode(ctx context.Context, userID string, mode domain.SlipMode) error {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	store.SetMode(mode)
	return nil
}

// Snapshot returns the slip state and its derived totals.
func (s *SlipService) Snapshot(ctx context.Context, userID string) (domain.SlipState, slip.Totals, error) {
	store, err := s.Session(ctx, userID)
	if err != nil {
		return domain.SlipState{}, slip.Totals{}, err
	}
	state := store.Snapshot()
	return state, slip.ComputeTotals(state), nil
}

// ActiveEventIDs returns the distinct event ids across all live sessions,
// the set the odds feed subscribes to.
func (s *SlipService) ActiveEventIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var ids []string
	for _, store := range s.sessions {
		for _, id := range store.Snapshot().EventIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ApplyQuote pushes a fresh catalog price onto every session holding the
// quoted market. Display-side only.
func (s *SlipService) ApplyQuote(eventID string, betType domain.BetType, prop *domain.PlayerProp, american int) int {
	id := domain.MarketID(eventID, betType, prop)

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, store := range s.sessions {
		if store.RefreshOdds(id, american) {
			updated++
		}
	}
	return updated
}

// persistAsync saves the selection list without blocking the mutation path.
// Failures are logged and swallowed; persistence is a convenience, not a
// correctness requirement.
func (s *SlipService) persistAsync(userID string, store *slip.Store) {
	if s.records == nil {
		return
	}
	selections := store.Snapshot().Selections

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.records.Save(ctx, userID, selections); err != nil {
			s.logger.Warn("failed to persist slip",
				slog.String("user", userID),
				slog.Int("selections", len(selections)),
				slog.String("error", err.Error()),
			)
		}
	}()
}

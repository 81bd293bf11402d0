// Package slip holds the bet slip state machine: an ordered set of
// selections plus the slip-level mode and parlay stake. The store applies
// mutations; it does not persist, validate, or talk to the network.
package slip

import (
	"sync"

	"github.com/wagerpool/betslip/internal/domain"
)

// Change reports what a call to AddOrToggle did to the slip.
type Change string

const (
	// ChangeInserted means the candidate was added as a new leg.
	ChangeInserted Change = "inserted"
	// ChangeRemoved means the identical pick was already present and was
	// toggled off.
	ChangeRemoved Change = "removed"
	// ChangeReplaced means a different pick on the same market was swapped
	// for the candidate, keeping the previously entered stake.
	ChangeReplaced Change = "replaced"
)

// decide is the pure three-way branch behind AddOrToggle, separated from the
// list mutation so it can be tested on its own.
func decide(existing *domain.Selection, candidate domain.Selection) Change {
	switch {
	case existing == nil:
		return ChangeInserted
	case existing.SameOutcome(candidate):
		return ChangeRemoved
	default:
		return ChangeReplaced
	}
}

// Store owns a single slip. There is one writer per slip (the user's own
// interaction), but the HTTP surface can race a feed update against it, so
// mutations are serialized with a mutex.
type Store struct {
	mu    sync.Mutex
	state domain.SlipState
}

// New returns an empty slip in straight mode.
func New() *Store {
	return &Store{state: domain.SlipState{Mode: domain.ModeStraight}}
}

// AddOrToggle applies the tap-an-odds-cell gesture: insert when the market is
// not on the slip, remove when the identical pick is tapped again, replace in
// place (keeping the old stake) when the other side of the market is picked.
func (s *Store) AddOrToggle(candidate domain.Selection) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.state.Find(candidate.ID)
	change := decide(existing, candidate)

	switch change {
	case ChangeInserted:
		if candidate.Stake <= 0 {
			candidate.Stake = domain.DefaultStake
		}
		s.state.Selections = append(s.state.Selections, candidate)
	case ChangeRemoved:
		s.removeLocked(candidate.ID)
	case ChangeReplaced:
		candidate.Stake = existing.Stake
		*existing = candidate
	}
	return change
}

// Remove deletes the selection with the given id. It reports whether
// anything was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *Store) removeLocked(id string) bool {
	for i := range s.state.Selections {
		if s.state.Selections[i].ID == id {
			s.state.Selections = append(s.state.Selections[:i], s.state.Selections[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the slip and resets mode and parlay stake.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SlipState{Mode: domain.ModeStraight}
}

// SetStake sets the stake of one straight-mode leg. In parlay mode per-leg
// stakes are meaningless and the call is a no-op.
func (s *Store) SetStake(id string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Mode != domain.ModeStraight || amount < 0 {
		return
	}
	if sel := s.state.Find(id); sel != nil {
		sel.Stake = amount
	}
}

// SetParlayStake sets the single parlay-mode stake.
func (s *Store) SetParlayStake(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount < 0 {
		return
	}
	s.state.ParlayStake = amount
}

// SetMode switches between straight and parlay staking. The store accepts
// any value; an unlawful transition (parlay with one leg, duplicated events)
// is caught by validation before placement, not here.
func (s *Store) SetMode(mode domain.SlipMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Mode = mode
}

// ReplaceAll swaps in a restored selection list, used when loading a
// persisted slip at session start. Mode and parlay stake reset.
func (s *Store) ReplaceAll(selections []domain.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SlipState{
		Mode:       domain.ModeStraight,
		Selections: append([]domain.Selection(nil), selections...),
	}
}

// RefreshOdds updates the quoted price shown for a market already on the
// slip. Display-side only; quoted odds are never sent at placement.
func (s *Store) RefreshOdds(id string, american int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if american == 0 {
		return false
	}
	if sel := s.state.Find(id); sel != nil {
		sel.Odds = american
		return true
	}
	return false
}

// Len returns the number of selections on the slip.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Selections)
}

// Snapshot returns a deep copy of the slip state.
func (s *Store) Snapshot() domain.SlipState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := domain.SlipState{
		Mode:        s.state.Mode,
		ParlayStake: s.state.ParlayStake,
		Selections:  make([]domain.Selection, len(s.state.Selections)),
	}
	copy(out.Selections, s.state.Selections)
	for i := range out.Selections {
		if p := out.Selections[i].Prop; p != nil {
			cp := *p
			out.Selections[i].Prop = &cp
		}
		if l := out.Selections[i].Line; l != nil {
			cl := *l
			out.Selections[i].Line = &cl
		}
	}
	return out
}

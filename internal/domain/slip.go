package domain

// SlipMode selects how the slip is staked and settled.
type SlipMode string

const (
	// ModeStraight stakes every leg independently; each leg is its own wager.
	ModeStraight SlipMode = "straight"
	// ModeParlay combines all legs into a single wager with one stake.
	ModeParlay SlipMode = "parlay"
)

// MinParlayLegs is the smallest number of legs a parlay may have.
const MinParlayLegs = 2

// DefaultStake is assigned to a leg on first insertion when the candidate
// carries no stake of its own.
const DefaultStake = 10

// SlipState is the full observable state of the bet slip. Selections keep
// insertion order. ParlayStake is meaningful only in parlay mode.
type SlipState struct {
	Selections  []Selection `json:"selections"`
	Mode        SlipMode    `json:"mode"`
	ParlayStake float64     `json:"parlayStake,omitempty"`
}

// Find returns the selection with the given id, or nil.
func (s SlipState) Find(id string) *Selection {
	for i := range s.Selections {
		if s.Selections[i].ID == id {
			return &s.Selections[i]
		}
	}
	return nil
}

// EventIDs returns the distinct event ids present on the slip, in first-seen
// order.
func (s SlipState) EventIDs() []string {
	seen := make(map[string]bool, len(s.Selections))
	ids := make([]string, 0, len(s.Selections))
	for _, sel := range s.Selections {
		if !seen[sel.EventID] {
			seen[sel.EventID] = true
			ids = append(ids, sel.EventID)
		}
	}
	return ids
}

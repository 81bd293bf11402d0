package domain

// BetTicket is a single straight wager submitted to the settlement service.
// Odds and line are deliberately absent: the settlement service is
// authoritative on pricing at acceptance time.
type BetTicket struct {
	User     string
	Pool     string
	EventID  string
	LeagueID string
	BetType  BetType
	Outcome  Outcome
	Stake    float64
	Prop     *PlayerProp
}

// ParlayLeg identifies one leg of a parlay ticket. Like BetTicket it carries
// no stake, odds, or line.
type ParlayLeg struct {
	EventID  string
	LeagueID string
	BetType  BetType
	Outcome  Outcome
	Prop     *PlayerProp
}

// ParlayTicket is a single combined wager over two or more legs.
type ParlayTicket struct {
	User  string
	Pool  string
	Stake float64
	Legs  []ParlayLeg
}

// PlaceOutcome is the settlement service's verdict on one submission.
type PlaceOutcome struct {
	Success bool
	BetID   string
	Message string // server-provided rejection reason, verbatim
}

// ItemOutcome records the fate of one slip selection during placement.
type ItemOutcome struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Error string `json:"error,omitempty"`
}

// PlacementResult aggregates per-item outcomes of a placement run. Placed and
// Failed partition the submitted selections; for a parlay there is exactly
// one item either way.
type PlacementResult struct {
	Placed     []ItemOutcome `json:"placed"`
	Failed     []ItemOutcome `json:"failed"`
	TotalStake float64       `json:"totalStake"`
}

// AllPlaced reports whether every submitted item was accepted.
func (r PlacementResult) AllPlaced() bool {
	return len(r.Failed) == 0 && len(r.Placed) > 0
}

package domain

import (
	"fmt"
	"time"
)

// BetType identifies the market a selection belongs to.
type BetType string

const (
	BetTypeSpread     BetType = "spread"
	BetTypeTotal      BetType = "total"
	BetTypeMoneyline  BetType = "moneyline"
	BetTypePlayerProp BetType = "player_prop"
)

// Outcome is the side of a market the user picked. Its meaning depends on the
// bet type: home/away for spreads and moneylines, over/under for totals,
// yes/no for player props.
type Outcome string

const (
	OutcomeHome  Outcome = "home"
	OutcomeAway  Outcome = "away"
	OutcomeOver  Outcome = "over"
	OutcomeUnder Outcome = "under"
	OutcomeYes   Outcome = "yes"
	OutcomeNo    Outcome = "no"
)

// PlayerProp carries the player-specific fields of a player_prop selection.
type PlayerProp struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	StatType    string `json:"statType"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
}

// Selection is one leg of a potential wager. Two selections on the same
// market always share an ID (see MarketID), so the slip can hold at most one
// pick per market at a time.
type Selection struct {
	ID       string      `json:"id"`
	EventID  string      `json:"eventId"`
	LeagueID string      `json:"leagueId"`
	GameTime time.Time   `json:"gameTime"`
	Matchup  string      `json:"matchup"`
	TeamName string      `json:"teamName"`
	BetType  BetType     `json:"betType"`
	Outcome  Outcome     `json:"selection"`
	Odds     int         `json:"odds"` // American format, never zero
	Line     *float64    `json:"line,omitempty"`
	Stake    float64     `json:"stake,omitempty"` // per-leg stake, straight mode only
	Prop     *PlayerProp `json:"playerPropData,omitempty"`
}

// MarketID derives the stable selection ID for a market. All outcomes of one
// market map to the same ID, which is what makes pick-the-other-side a
// replace rather than a second entry. Player props are keyed per player and
// stat so two props on the same event never collide.
func MarketID(eventID string, betType BetType, prop *PlayerProp) string {
	if betType == BetTypePlayerProp && prop != nil {
		return fmt.Sprintf("%s:%s:%s:%s", eventID, betType, prop.PlayerID, prop.StatType)
	}
	return fmt.Sprintf("%s:%s", eventID, betType)
}

// SameOutcome reports whether two selections represent the identical pick.
func (s Selection) SameOutcome(other Selection) bool {
	return s.BetType == other.BetType && s.Outcome == other.Outcome
}

// Label returns a short human-readable description of the selection, used in
// placement summaries and notifications.
func (s Selection) Label() string {
	if s.BetType == BetTypePlayerProp && s.Prop != nil {
		return fmt.Sprintf("%s %s %s", s.Prop.PlayerName, s.Outcome, s.Prop.DisplayName)
	}
	if s.TeamName != "" {
		return fmt.Sprintf("%s %s", s.TeamName, s.BetType)
	}
	return fmt.Sprintf("%s %s %s", s.Matchup, s.BetType, s.Outcome)
}

// FilterStarted splits selections into those whose event has not started yet
// and the count of those dropped because GameTime is at or before now. Odds
// quoted for an already-started event are stale and must not come back.
func FilterStarted(selections []Selection, now time.Time) ([]Selection, int) {
	fresh := make([]Selection, 0, len(selections))
	for _, sel := range selections {
		if sel.GameTime.After(now) {
			fresh = append(fresh, sel)
		}
	}
	return fresh, len(selections) - len(fresh)
}

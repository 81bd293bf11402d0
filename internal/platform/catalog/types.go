package catalog

import "time"

// Event is the catalog service's metadata for one contest.
type Event struct {
	ID       string    `json:"id"`
	LeagueID string    `json:"leagueId"`
	Matchup  string    `json:"matchup"`
	HomeTeam string    `json:"homeTeam"`
	AwayTeam string    `json:"awayTeam"`
	GameTime time.Time `json:"gameTime"`
	Status   string    `json:"status"` // upcoming, live, final
}

// Quote is one current price on an event market.
type Quote struct {
	EventID   string   `json:"eventId"`
	BetType   string   `json:"betType"`
	Selection string   `json:"selection"`
	Odds      int      `json:"odds"` // American
	Line      *float64 `json:"line,omitempty"`
	PlayerID  string   `json:"playerId,omitempty"`
	StatType  string   `json:"statType,omitempty"`
}

package settlement

// placeBetRequest is the wire body for POST /bets. The request carries no
// odds or line; the settlement service prices the wager at acceptance time.
type placeBetRequest struct {
	User       string  `json:"user"`
	Pool       string  `json:"pool"`
	EventID    string  `json:"eventID"`
	LeagueID   string  `json:"leagueID"`
	BetType    string  `json:"betType"`
	Selection  string  `json:"selection"`
	Stake      float64 `json:"stake"`
	PlayerID   string  `json:"playerId,omitempty"`
	PlayerName string  `json:"playerName,omitempty"`
	StatType   string  `json:"statType,omitempty"`
	Display    string  `json:"displayName,omitempty"`
	Category   string  `json:"category,omitempty"`
}

// legSpec mirrors the per-leg identification fields of placeBetRequest,
// minus stake.
type legSpec struct {
	EventID    string `json:"eventID"`
	LeagueID   string `json:"leagueID"`
	BetType    string `json:"betType"`
	Selection  string `json:"selection"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	StatType   string `json:"statType,omitempty"`
	Display    string `json:"displayName,omitempty"`
	Category   string `json:"category,omitempty"`
}

// placeParlayRequest is the wire body for POST /bets/parlay.
type placeParlayRequest struct {
	User  string    `json:"user"`
	Pool  string    `json:"pool"`
	Stake float64   `json:"stake"`
	Legs  []legSpec `json:"legs"`
}

// placeResponse is the settlement service's reply to either endpoint.
type placeResponse struct {
	Success bool   `json:"success"`
	BetID   string `json:"betId,omitempty"`
	Error   string `json:"error,omitempty"`
}

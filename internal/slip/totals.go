package slip

import (
	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/odds"
)

// Totals are the derived money figures for a slip snapshot. They are
// recomputed on demand and never stored.
type Totals struct {
	Stake  float64 `json:"totalStake"`
	Payout float64 `json:"potentialPayout"`
	Profit float64 `json:"totalProfit"`
}

// ComputeTotals derives stake, potential payout, and profit from a snapshot
// according to its mode. Legs whose payout cannot be priced (zero odds, or a
// parlay that cannot combine yet) contribute stake but no winnings, so a
// half-built slip still shows a sensible total.
func ComputeTotals(state domain.SlipState) Totals {
	var t Totals

	switch state.Mode {
	case domain.ModeParlay:
		t.Stake = state.ParlayStake
		legs := make([]int, 0, len(state.Selections))
		for _, sel := range state.Selections {
			legs = append(legs, sel.Odds)
		}
		price, err := odds.Combine(legs)
		if err != nil {
			break
		}
		t.Payout = state.ParlayStake * price.Decimal
	default:
		for _, sel := range state.Selections {
			t.Stake += sel.Stake
			payout, err := odds.Payout(sel.Stake, sel.Odds)
			if err != nil {
				continue
			}
			t.Payout += payout
		}
	}

	if t.Payout > 0 {
		t.Profit = t.Payout - t.Stake
	}
	return t
}

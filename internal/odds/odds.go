// Package odds converts between American and decimal odds notation and
// computes payouts. All functions are pure.
package odds

import (
	"fmt"
	"math"

	"github.com/wagerpool/betslip/internal/domain"
)

// AmericanToDecimal converts American odds to a decimal price >= 1.
// +150 -> 2.50, -110 -> 1.9091. Zero is not a valid American price.
func AmericanToDecimal(american int) (float64, error) {
	switch {
	case american > 0:
		return float64(american)/100 + 1, nil
	case american < 0:
		return 100/math.Abs(float64(american)) + 1, nil
	default:
		return 0, fmt.Errorf("odds: american price 0: %w", domain.ErrInvalidOdds)
	}
}

// DecimalToAmerican converts a decimal price > 1 back to American notation,
// rounding to the nearest integer with ties away from zero, which is how
// sportsbooks display combined prices.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1 {
		return 0, fmt.Errorf("odds: decimal price %v: %w", decimal, domain.ErrInvalidOdds)
	}
	if decimal >= 2 {
		return int(math.Round((decimal - 1) * 100)), nil
	}
	return int(math.Round(-100 / (decimal - 1))), nil
}

// Payout returns the total return including stake for a wager at the given
// American price. Profit is Payout minus the stake.
func Payout(stake float64, american int) (float64, error) {
	if stake < 0 {
		return 0, fmt.Errorf("odds: negative stake %v: %w", stake, domain.ErrInvalidOdds)
	}
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return stake * dec, nil
}

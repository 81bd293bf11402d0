package odds

import (
	"fmt"

	"github.com/wagerpool/betslip/internal/domain"
)

// CombinedPrice is a parlay price in both notations.
type CombinedPrice struct {
	American int
	Decimal  float64
}

// Combine prices a parlay from its legs' American odds: the combined decimal
// price is the product of the legs' decimal prices, treating the events as
// independent. The reduction is order-independent and associative. Fewer than
// domain.MinParlayLegs legs is an error.
func Combine(legs []int) (CombinedPrice, error) {
	if len(legs) < domain.MinParlayLegs {
		return CombinedPrice{}, fmt.Errorf("odds: parlay needs at least %d legs, got %d: %w",
			domain.MinParlayLegs, len(legs), domain.ErrInsufficientLegs)
	}

	decimal := 1.0
	for _, leg := range legs {
		d, err := AmericanToDecimal(leg)
		if err != nil {
			return CombinedPrice{}, err
		}
		decimal *= d
	}

	american, err := DecimalToAmerican(decimal)
	if err != nil {
		return CombinedPrice{}, err
	}
	return CombinedPrice{American: american, Decimal: decimal}, nil
}

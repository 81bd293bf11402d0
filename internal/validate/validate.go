// Package validate gates slip submission. Every check runs; the caller gets
// the complete list of problems, not just the first one.
package validate

import (
	"fmt"

	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/slip"
)

// Reason is a machine-readable validation failure code.
type Reason string

const (
	ReasonEmptySlip           Reason = "empty_slip"
	ReasonInsufficientLegs    Reason = "insufficient_legs"
	ReasonSameEventConflict   Reason = "same_event_conflict"
	ReasonInvalidStake        Reason = "invalid_stake"
	ReasonStakeTooLarge       Reason = "stake_too_large"
	ReasonTooManyLegs         Reason = "too_many_legs"
	ReasonInsufficientBalance Reason = "insufficient_balance"
	ReasonMissingIdentity     Reason = "missing_identity"
	ReasonMissingPool         Reason = "missing_pool"
)

// Issue is one validation failure with a display message.
type Issue struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Context is the external state a slip is validated against.
type Context struct {
	UserID           string
	PoolID           string
	AvailableBalance float64
}

// Engine checks slip snapshots against configured ceilings.
type Engine struct {
	maxStake float64
	maxLegs  int
}

// New creates an Engine. maxStake bounds any single stake amount and maxLegs
// bounds the number of selections; zero disables the respective ceiling.
func New(maxStake float64, maxLegs int) *Engine {
	return &Engine{maxStake: maxStake, maxLegs: maxLegs}
}

// Check validates a snapshot for placement. A nil/empty result means the
// slip may be submitted.
func (e *Engine) Check(state domain.SlipState, vctx Context) []Issue {
	var issues []Issue

	if vctx.UserID == "" {
		issues = append(issues, Issue{ReasonMissingIdentity, "no signed-in user"})
	}
	if vctx.PoolID == "" {
		issues = append(issues, Issue{ReasonMissingPool, "no active pool"})
	}

	if len(state.Selections) == 0 {
		issues = append(issues, Issue{ReasonEmptySlip, "slip is empty"})
		return issues
	}

	if e.maxLegs > 0 && len(state.Selections) > e.maxLegs {
		issues = append(issues, Issue{ReasonTooManyLegs,
			fmt.Sprintf("at most %d selections allowed, slip has %d", e.maxLegs, len(state.Selections))})
	}

	if state.Mode == domain.ModeParlay {
		issues = append(issues, e.checkParlay(state)...)
	} else {
		issues = append(issues, e.checkStraight(state)...)
	}

	totals := slip.ComputeTotals(state)
	if totals.Stake > vctx.AvailableBalance {
		issues = append(issues, Issue{ReasonInsufficientBalance,
			fmt.Sprintf("total stake %.2f exceeds available balance %.2f", totals.Stake, vctx.AvailableBalance)})
	}

	return issues
}

func (e *Engine) checkParlay(state domain.SlipState) []Issue {
	var issues []Issue

	if len(state.Selections) < domain.MinParlayLegs {
		issues = append(issues, Issue{ReasonInsufficientLegs,
			fmt.Sprintf("a parlay needs at least %d selections", domain.MinParlayLegs)})
	}

	// Correlated legs from one contest cannot be parlayed.
	byEvent := make(map[string]int, len(state.Selections))
	for _, sel := range state.Selections {
		byEvent[sel.EventID]++
	}
	for eventID, n := range byEvent {
		if n > 1 {
			issues = append(issues, Issue{ReasonSameEventConflict,
				fmt.Sprintf("parlay has %d selections from event %s", n, eventID)})
		}
	}

	if state.ParlayStake <= 0 {
		issues = append(issues, Issue{ReasonInvalidStake, "parlay stake must be greater than zero"})
	} else if e.maxStake > 0 && state.ParlayStake > e.maxStake {
		issues = append(issues, Issue{ReasonStakeTooLarge,
			fmt.Sprintf("parlay stake %.2f exceeds limit %.2f", state.ParlayStake, e.maxStake)})
	}

	return issues
}

func (e *Engine) checkStraight(state domain.SlipState) []Issue {
	var issues []Issue
	for _, sel := range state.Selections {
		if sel.Stake <= 0 {
			issues = append(issues, Issue{ReasonInvalidStake,
				fmt.Sprintf("selection %s has no stake", sel.ID)})
		} else if e.maxStake > 0 && sel.Stake > e.maxStake {
			issues = append(issues, Issue{ReasonStakeTooLarge,
				fmt.Sprintf("selection %s stake %.2f exceeds limit %.2f", sel.ID, sel.Stake, e.maxStake)})
		}
	}
	return issues
}

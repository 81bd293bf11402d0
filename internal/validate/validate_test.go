package validate

import (
	"testing"
	"time"

	"github.com/wagerpool/betslip/internal/domain"
)

func okCtx() Context {
	return Context{UserID: "u1", PoolID: "pool1", AvailableBalance: 1000}
}

func leg(event string, out domain.Outcome, stake float64) domain.Selection {
	return domain.Selection{
		ID:       domain.MarketID(event, domain.BetTypeMoneyline, nil),
		EventID:  event,
		GameTime: time.Now().Add(time.Hour),
		BetType:  domain.BetTypeMoneyline,
		Outcome:  out,
		Odds:     -110,
		Stake:    stake,
	}
}

func hasReason(issues []Issue, r Reason) bool {
	for _, i := range issues {
		if i.Reason == r {
			return true
		}
	}
	return false
}

func TestEmptySlip(t *testing.T) {
	e := New(0, 0)
	issues := e.Check(domain.SlipState{Mode: domain.ModeStraight}, okCtx())
	if !hasReason(issues, ReasonEmptySlip) {
		t.Fatalf("expected empty_slip, got %v", issues)
	}
}

func TestValidStraightSlip(t *testing.T) {
	e := New(10000, 12)
	state := domain.SlipState{
		Mode:       domain.ModeStraight,
		Selections: []domain.Selection{leg("e1", domain.OutcomeHome, 10), leg("e2", domain.OutcomeAway, 25)},
	}
	if issues := e.Check(state, okCtx()); len(issues) != 0 {
		t.Fatalf("expected clean slip, got %v", issues)
	}
}

func TestParlayNeedsTwoLegs(t *testing.T) {
	e := New(0, 0)
	state := domain.SlipState{
		Mode:        domain.ModeParlay,
		ParlayStake: 10,
		Selections:  []domain.Selection{leg("e1", domain.OutcomeHome, 0)},
	}
	if issues := e.Check(state, okCtx()); !hasReason(issues, ReasonInsufficientLegs) {
		t.Fatalf("expected insufficient_legs, got %v", issues)
	}
}

func TestParlaySameEventConflict(t *testing.T) {
	e := New(0, 0)
	a := leg("e1", domain.OutcomeHome, 0)
	b := leg("e1", domain.OutcomeOver, 0)
	b.ID = domain.MarketID("e1", domain.BetTypeTotal, nil)
	b.BetType = domain.BetTypeTotal
	state := domain.SlipState{Mode: domain.ModeParlay, ParlayStake: 10, Selections: []domain.Selection{a, b}}

	if issues := e.Check(state, okCtx()); !hasReason(issues, ReasonSameEventConflict) {
		t.Fatalf("expected same_event_conflict, got %v", issues)
	}
}

func TestStraightMissingStake(t *testing.T) {
	e := New(0, 0)
	state := domain.SlipState{
		Mode:       domain.ModeStraight,
		Selections: []domain.Selection{leg("e1", domain.OutcomeHome, 0)},
	}
	if issues := e.Check(state, okCtx()); !hasReason(issues, ReasonInvalidStake) {
		t.Fatalf("expected invalid_stake, got %v", issues)
	}
}

func TestInsufficientBalance(t *testing.T) {
	e := New(0, 0)
	state := domain.SlipState{
		Mode:       domain.ModeStraight,
		Selections: []domain.Selection{leg("e1", domain.OutcomeHome, 50)},
	}
	ctx := okCtx()
	ctx.AvailableBalance = 49.99
	if issues := e.Check(state, ctx); !hasReason(issues, ReasonInsufficientBalance) {
		t.Fatalf("expected insufficient_balance, got %v", issues)
	}
}

func TestMissingIdentityAndPool(t *testing.T) {
	e := New(0, 0)
	state := domain.SlipState{
		Mode:       domain.ModeStraight,
		Selections: []domain.Selection{leg("e1", domain.OutcomeHome, 10)},
	}
	issues := e.Check(state, Context{AvailableBalance: 100})
	if !hasReason(issues, ReasonMissingIdentity) || !hasReason(issues, ReasonMissingPool) {
		t.Fatalf("expected missing identity and pool, got %v", issues)
	}
}

func TestStakeCeiling(t *testing.T) {
	e := New(100, 0)
	state := domain.SlipState{
		Mode:       domain.ModeStraight,
		Selections: []domain.Selection{leg("e1", domain.OutcomeHome, 101)},
	}
	ctx := okCtx()
	ctx.AvailableBalance = 1e6
	if issues := e.Check(state, ctx); !hasReason(issues, ReasonStakeTooLarge) {
		t.Fatalf("expected stake_too_large, got %v", issues)
	}
}

func TestLegCeiling(t *testing.T) {
	e := New(0, 2)
	state := domain.SlipState{
		Mode: domain.ModeStraight,
		Selections: []domain.Selection{
			leg("e1", domain.OutcomeHome, 10),
			leg("e2", domain.OutcomeHome, 10),
			leg("e3", domain.OutcomeHome, 10),
		},
	}
	if issues := e.Check(state, okCtx()); !hasReason(issues, ReasonTooManyLegs) {
		t.Fatalf("expected too_many_legs, got %v", issues)
	}
}

// All applicable problems come back in one pass so the UI can show them all.
func TestIssuesAccumulate(t *testing.T) {
	e := New(0, 0)
	a := leg("e1", domain.OutcomeHome, 0)
	b := leg("e1", domain.OutcomeAway, 0)
	state := domain.SlipState{Mode: domain.ModeParlay, Selections: []domain.Selection{a, b}}

	issues := e.Check(state, Context{})
	for _, want := range []Reason{
		ReasonMissingIdentity, ReasonMissingPool, ReasonSameEventConflict, ReasonInvalidStake,
	} {
		if !hasReason(issues, want) {
			t.Fatalf("expected %s among %v", want, issues)
		}
	}
}

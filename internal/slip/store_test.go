package slip

import (
	"math"
	"testing"
	"time"

	"github.com/wagerpool/betslip/internal/domain"
)

func sel(event string, bt domain.BetType, out domain.Outcome, odds int) domain.Selection {
	return domain.Selection{
		ID:       domain.MarketID(event, bt, nil),
		EventID:  event,
		LeagueID: "nba",
		GameTime: time.Now().Add(2 * time.Hour),
		BetType:  bt,
		Outcome:  out,
		Odds:     odds,
	}
}

func TestAddDefaultsStake(t *testing.T) {
	s := New()
	if ch := s.AddOrToggle(sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110)); ch != ChangeInserted {
		t.Fatalf("expected insert, got %s", ch)
	}
	snap := s.Snapshot()
	if len(snap.Selections) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(snap.Selections))
	}
	if snap.Selections[0].Stake != domain.DefaultStake {
		t.Fatalf("expected default stake %d, got %v", domain.DefaultStake, snap.Selections[0].Stake)
	}
}

func TestToggleIdenticalRemoves(t *testing.T) {
	s := New()
	pick := sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110)
	s.AddOrToggle(pick)
	if ch := s.AddOrToggle(pick); ch != ChangeRemoved {
		t.Fatalf("expected remove, got %s", ch)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty slip, got %d selections", s.Len())
	}
}

func TestReplacePreservesStake(t *testing.T) {
	s := New()
	home := sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110)
	s.AddOrToggle(home)
	s.SetStake(home.ID, 25)

	away := sel("e1", domain.BetTypeSpread, domain.OutcomeAway, -105)
	if ch := s.AddOrToggle(away); ch != ChangeReplaced {
		t.Fatalf("expected replace, got %s", ch)
	}
	snap := s.Snapshot()
	if len(snap.Selections) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(snap.Selections))
	}
	got := snap.Selections[0]
	if got.Outcome != domain.OutcomeAway || got.Odds != -105 {
		t.Fatalf("replace did not take: %+v", got)
	}
	if got.Stake != 25 {
		t.Fatalf("expected carried stake 25, got %v", got.Stake)
	}
}

func TestReplaceKeepsPosition(t *testing.T) {
	s := New()
	s.AddOrToggle(sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110))
	s.AddOrToggle(sel("e2", domain.BetTypeTotal, domain.OutcomeOver, -115))
	s.AddOrToggle(sel("e1", domain.BetTypeSpread, domain.OutcomeAway, 100))

	snap := s.Snapshot()
	if snap.Selections[0].EventID != "e1" || snap.Selections[1].EventID != "e2" {
		t.Fatalf("replace reordered slip: %+v", snap.Selections)
	}
}

func TestPlayerPropsOnSameEventCoexist(t *testing.T) {
	s := New()
	p1 := sel("e1", domain.BetTypePlayerProp, domain.OutcomeOver, -120)
	p1.Prop = &domain.PlayerProp{PlayerID: "p1", StatType: "points"}
	p1.ID = domain.MarketID("e1", domain.BetTypePlayerProp, p1.Prop)
	p2 := sel("e1", domain.BetTypePlayerProp, domain.OutcomeOver, -120)
	p2.Prop = &domain.PlayerProp{PlayerID: "p2", StatType: "points"}
	p2.ID = domain.MarketID("e1", domain.BetTypePlayerProp, p2.Prop)

	s.AddOrToggle(p1)
	s.AddOrToggle(p2)
	if s.Len() != 2 {
		t.Fatalf("props on different players should not collide, got %d", s.Len())
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := New()
	s.AddOrToggle(sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110))
	if s.Remove("nope") {
		t.Fatal("expected no-op remove to report false")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 selection, got %d", s.Len())
	}
}

func TestClearResetsModeAndParlayStake(t *testing.T) {
	s := New()
	s.AddOrToggle(sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110))
	s.AddOrToggle(sel("e2", domain.BetTypeTotal, domain.OutcomeOver, 120))
	s.SetMode(domain.ModeParlay)
	s.SetParlayStake(50)

	s.Clear()
	snap := s.Snapshot()
	if len(snap.Selections) != 0 || snap.Mode != domain.ModeStraight || snap.ParlayStake != 0 {
		t.Fatalf("clear left residue: %+v", snap)
	}
}

func TestSetStakeIgnoredInParlayMode(t *testing.T) {
	s := New()
	pick := sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110)
	s.AddOrToggle(pick)
	s.SetMode(domain.ModeParlay)
	s.SetStake(pick.ID, 99)

	snap := s.Snapshot()
	if snap.Selections[0].Stake != domain.DefaultStake {
		t.Fatalf("parlay-mode SetStake should be a no-op, got %v", snap.Selections[0].Stake)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New()
	line := 47.5
	pick := sel("e1", domain.BetTypeTotal, domain.OutcomeOver, -110)
	pick.Line = &line
	s.AddOrToggle(pick)

	snap := s.Snapshot()
	*snap.Selections[0].Line = 99
	snap.Selections[0].Stake = 1000

	again := s.Snapshot()
	if *again.Selections[0].Line != 47.5 || again.Selections[0].Stake != domain.DefaultStake {
		t.Fatalf("snapshot leaked mutable state: %+v", again.Selections[0])
	}
}

func TestRefreshOdds(t *testing.T) {
	s := New()
	pick := sel("e1", domain.BetTypeSpread, domain.OutcomeHome, -110)
	s.AddOrToggle(pick)

	if !s.RefreshOdds(pick.ID, -125) {
		t.Fatal("expected refresh to hit")
	}
	if s.RefreshOdds(pick.ID, 0) {
		t.Fatal("zero odds must be rejected")
	}
	if s.RefreshOdds("missing", -120) {
		t.Fatal("expected miss for unknown id")
	}
	if got := s.Snapshot().Selections[0].Odds; got != -125 {
		t.Fatalf("expected refreshed odds -125, got %d", got)
	}
}

func TestTotalsStraight(t *testing.T) {
	s := New()
	a := sel("e1", domain.BetTypeMoneyline, domain.OutcomeHome, 150)
	b := sel("e2", domain.BetTypeMoneyline, domain.OutcomeAway, -110)
	s.AddOrToggle(a)
	s.AddOrToggle(b)

	tot := ComputeTotals(s.Snapshot())
	if tot.Stake != 20 {
		t.Fatalf("stake = %v, want 20", tot.Stake)
	}
	want := 25.0 + 10*(1.0+100.0/110.0)
	if math.Abs(tot.Payout-want) > 1e-9 {
		t.Fatalf("payout = %v, want %v", tot.Payout, want)
	}
	if math.Abs(tot.Profit-(want-20)) > 1e-9 {
		t.Fatalf("profit = %v, want %v", tot.Profit, want-20)
	}
}

func TestTotalsParlay(t *testing.T) {
	s := New()
	s.AddOrToggle(sel("e1", domain.BetTypeMoneyline, domain.OutcomeHome, -110))
	s.AddOrToggle(sel("e2", domain.BetTypeMoneyline, domain.OutcomeAway, 120))
	s.SetMode(domain.ModeParlay)
	s.SetParlayStake(10)

	tot := ComputeTotals(s.Snapshot())
	if tot.Stake != 10 {
		t.Fatalf("stake = %v, want 10", tot.Stake)
	}
	want := 10 * (1.0 + 100.0/110.0) * 2.2
	if math.Abs(tot.Payout-want) > 1e-9 {
		t.Fatalf("payout = %v, want %v", tot.Payout, want)
	}
}

func TestTotalsParlaySingleLegHasNoPayout(t *testing.T) {
	s := New()
	s.AddOrToggle(sel("e1", domain.BetTypeMoneyline, domain.OutcomeHome, -110))
	s.SetMode(domain.ModeParlay)
	s.SetParlayStake(10)

	tot := ComputeTotals(s.Snapshot())
	if tot.Payout != 0 || tot.Profit != 0 {
		t.Fatalf("one-leg parlay must not price: %+v", tot)
	}
}

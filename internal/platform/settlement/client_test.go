package settlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wagerpool/betslip/internal/crypto"
	"github.com/wagerpool/betslip/internal/domain"
)

func TestPlaceBetSuccess(t *testing.T) {
	var got placeBetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bets" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Settle-Key") != "k" {
			t.Fatal("expected signed request")
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Fatal("expected request id header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(placeResponse{Success: true, BetID: "b-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &crypto.HMACAuth{Key: "k", Secret: "s"})
	out, err := c.PlaceBet(context.Background(), domain.BetTicket{
		User: "u1", Pool: "p1", EventID: "e1", LeagueID: "nba",
		BetType: domain.BetTypeSpread, Outcome: domain.OutcomeHome, Stake: 10,
	})
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if !out.Success || out.BetID != "b-1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got.Stake != 10 || got.BetType != "spread" || got.Selection != "home" {
		t.Fatalf("unexpected request %+v", got)
	}
}

// A wager the server turns down is a verdict, not an error.
func TestPlaceBetServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(placeResponse{Success: false, Error: "event already started"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	out, err := c.PlaceBet(context.Background(), domain.BetTicket{User: "u1", Pool: "p1", EventID: "e1"})
	if err != nil {
		t.Fatalf("expected structured rejection, got error %v", err)
	}
	if out.Success || out.Message != "event already started" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestPlaceBetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.PlaceBet(context.Background(), domain.BetTicket{User: "u1"}); err == nil {
		t.Fatal("expected transport error for undecodable 502")
	}
}

func TestPlaceParlayBody(t *testing.T) {
	var got placeParlayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bets/parlay" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(placeResponse{Success: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	out, err := c.PlaceParlay(context.Background(), domain.ParlayTicket{
		User: "u1", Pool: "p1", Stake: 20,
		Legs: []domain.ParlayLeg{
			{EventID: "e1", LeagueID: "nba", BetType: domain.BetTypeSpread, Outcome: domain.OutcomeHome},
			{EventID: "e2", LeagueID: "nba", BetType: domain.BetTypePlayerProp, Outcome: domain.OutcomeOver,
				Prop: &domain.PlayerProp{PlayerID: "pl1", StatType: "points"}},
		},
	})
	if err != nil {
		t.Fatalf("PlaceParlay: %v", err)
	}
	if !out.Success {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(got.Legs) != 2 || got.Stake != 20 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Legs[1].PlayerID != "pl1" {
		t.Fatalf("prop fields missing: %+v", got.Legs[1])
	}
}

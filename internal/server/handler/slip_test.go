package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/service"
	"github.com/wagerpool/betslip/internal/slip"
	"github.com/wagerpool/betslip/internal/validate"
)

// stubSubmitter records the placement call and returns canned results.
type stubSubmitter struct {
	result domain.PlacementResult
	issues []validate.Issue
	err    error
	called bool
}

func (s *stubSubmitter) Place(ctx context.Context, store *slip.Store, identity validate.Context) (domain.PlacementResult, []validate.Issue, error) {
	s.called = true
	return s.result, s.issues, s.err
}

func newTestMux(t *testing.T, submitter *stubSubmitter) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	svc := service.NewSlipService(nil, logger)
	h := NewSlipHandler(svc, submitter, validate.New(10_000, 12), nil, "pool-1", logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/slip", h.GetSlip)
	mux.HandleFunc("DELETE /api/slip", h.ClearSlip)
	mux.HandleFunc("POST /api/slip/selections", h.AddSelection)
	mux.HandleFunc("DELETE /api/slip/selections/{id}", h.RemoveSelection)
	mux.HandleFunc("PUT /api/slip/selections/{id}/stake", h.SetStake)
	mux.HandleFunc("PUT /api/slip/mode", h.SetMode)
	mux.HandleFunc("GET /api/slip/validate", h.ValidateSlip)
	mux.HandleFunc("POST /api/slip/place", h.PlaceSlip)
	return mux
}

func doRequest(mux *http.ServeMux, method, path, body, user string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func selectionBody(t *testing.T, eventID string, betType domain.BetType, outcome domain.Outcome) string {
	t.Helper()
	b, err := json.Marshal(domain.Selection{
		EventID:  eventID,
		LeagueID: "nba",
		GameTime: time.Now().Add(2 * time.Hour),
		Matchup:  "LAL @ BOS",
		TeamName: "Lakers",
		BetType:  betType,
		Outcome:  outcome,
		Odds:     -110,
	})
	if err != nil {
		t.Fatalf("marshal selection: %v", err)
	}
	return string(b)
}

func TestGetSlipRequiresUser(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})

	rec := doRequest(mux, http.MethodGet, "/api/slip", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user header, got %d", rec.Code)
	}
}

func TestAddSelectionInsertsAndToggles(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})
	body := selectionBody(t, "evt-1", domain.BetTypeSpread, domain.OutcomeHome)

	rec := doRequest(mux, http.MethodPost, "/api/slip/selections", body, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp addSelectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Change != slip.ChangeInserted {
		t.Errorf("expected inserted, got %q", resp.Change)
	}
	if len(resp.Selections) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(resp.Selections))
	}
	if resp.Selections[0].ID != "evt-1:spread" {
		t.Errorf("expected server-derived id, got %q", resp.Selections[0].ID)
	}

	// Same pick again toggles it off.
	rec = doRequest(mux, http.MethodPost, "/api/slip/selections", body, "u1")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Change != slip.ChangeRemoved {
		t.Errorf("expected removed on repeat, got %q", resp.Change)
	}
	if len(resp.Selections) != 0 {
		t.Errorf("expected empty slip after toggle, got %d", len(resp.Selections))
	}
}

func TestAddSelectionRejectsZeroOdds(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})

	rec := doRequest(mux, http.MethodPost, "/api/slip/selections",
		`{"eventId":"evt-1","betType":"spread","selection":"home","odds":0}`, "u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero odds, got %d", rec.Code)
	}
}

func TestRemoveSelectionNotFound(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})

	rec := doRequest(mux, http.MethodDelete, "/api/slip/selections/evt-9:spread", "", "u1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown selection, got %d", rec.Code)
	}
}

func TestSetStakeUpdatesTotals(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})
	doRequest(mux, http.MethodPost, "/api/slip/selections",
		selectionBody(t, "evt-1", domain.BetTypeSpread, domain.OutcomeHome), "u1")

	rec := doRequest(mux, http.MethodPut, "/api/slip/selections/evt-1:spread/stake",
		`{"amount":50}`, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp slipResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Totals.Stake != 50 {
		t.Errorf("expected total stake 50, got %v", resp.Totals.Stake)
	}
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})

	rec := doRequest(mux, http.MethodPut, "/api/slip/mode", `{"mode":"teaser"}`, "u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", rec.Code)
	}
}

func TestValidateEmptySlip(t *testing.T) {
	mux := newTestMux(t, &stubSubmitter{})

	rec := doRequest(mux, http.MethodGet, "/api/slip/validate?balance=100", "", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp validateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid {
		t.Error("expected empty slip to be invalid")
	}
	found := false
	for _, issue := range resp.Issues {
		if issue.Reason == validate.ReasonEmptySlip {
			found = true
		}
	}
	if !found {
		t.Errorf("expected empty_slip issue, got %v", resp.Issues)
	}
}

func TestPlaceSlipInvalidReturns422(t *testing.T) {
	sub := &stubSubmitter{
		issues: []validate.Issue{{Reason: validate.ReasonEmptySlip, Message: "slip is empty"}},
		err:    domain.ErrSlipInvalid,
	}
	mux := newTestMux(t, sub)

	rec := doRequest(mux, http.MethodPost, "/api/slip/place", `{"balance":100}`, "u1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !sub.called {
		t.Error("expected submitter to be consulted")
	}
}

func TestPlaceSlipSuccess(t *testing.T) {
	sub := &stubSubmitter{
		result: domain.PlacementResult{
			Placed:     []domain.ItemOutcome{{ID: "evt-1:spread", Label: "Lakers spread"}},
			TotalStake: 50,
		},
	}
	mux := newTestMux(t, sub)
	doRequest(mux, http.MethodPost, "/api/slip/selections",
		selectionBody(t, "evt-1", domain.BetTypeSpread, domain.OutcomeHome), "u1")

	rec := doRequest(mux, http.MethodPost, "/api/slip/place", `{"balance":100}`, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp placeSlipResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Result.AllPlaced() {
		t.Errorf("expected all placed, got %+v", resp.Result)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/slip"
	"github.com/wagerpool/betslip/internal/validate"
)

// SlipService defines the methods that the slip handler requires from the
// service layer.
type SlipService interface {
	Session(ctx context.Context, userID string) (*slip.Store, error)
	Snapshot(ctx context.Context, userID string) (domain.SlipState, slip.Totals, error)
	AddOrToggle(ctx context.Context, userID string, candidate domain.Selection) (slip.Change, error)
	Remove(ctx context.Context, userID, selectionID string) (bool, error)
	Clear(ctx context.Context, userID string) error
	SetStake(ctx context.Context, userID, selectionID string, amount float64) error
	SetParlayStake(ctx context.Context, userID string, amount float64) error
	SetMode(ctx context.Context, userID string, mode domain.SlipMode) error
}

// BetSubmitter submits the current slip to the settlement API.
type BetSubmitter interface {
	Place(ctx context.Context, store *slip.Store, identity validate.Context) (domain.PlacementResult, []validate.Issue, error)
}

// PlacementReporter pushes the outcome of a placement to notification
// channels. May be nil when notifications are not configured.
type PlacementReporter interface {
	PlacementReported(ctx context.Context, userID string, result domain.PlacementResult) error
}

// SlipHandler serves the bet slip HTTP endpoints.
type SlipHandler struct {
	slips     SlipService
	submitter BetSubmitter
	validator *validate.Engine
	reporter  PlacementReporter
	poolID    string
	logger    *slog.Logger
}

// NewSlipHandler creates a SlipHandler. reporter may be nil.
func NewSlipHandler(slips SlipService, submitter BetSubmitter, validator *validate.Engine, reporter PlacementReporter, poolID string, logger *slog.Logger) *SlipHandler {
	return &SlipHandler{
		slips:     slips,
		submitter: submitter,
		validator: validator,
		reporter:  reporter,
		poolID:    poolID,
		logger:    logger,
	}
}

// slipResponse is the canonical JSON shape of a slip returned by every
// mutation endpoint, so clients can re-render without a second round trip.
type slipResponse struct {
	Selections  []domain.Selection `json:"selections"`
	Mode        domain.SlipMode    `json:"mode"`
	ParlayStake float64            `json:"parlayStake"`
	Totals      slip.Totals        `json:"totals"`
}

func toSlipResponse(state domain.SlipState, totals slip.Totals) slipResponse {
	if state.Selections == nil {
		state.Selections = []domain.Selection{}
	}
	return slipResponse{
		Selections:  state.Selections,
		Mode:        state.Mode,
		ParlayStake: state.ParlayStake,
		Totals:      totals,
	}
}

// writeSlip fetches the current slip for the user and writes it with the
// given status, logging instead of failing if the snapshot itself errors.
func (h *SlipHandler) writeSlip(w http.ResponseWriter, r *http.Request, userID string, status int) {
	state, totals, err := h.slips.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: slip snapshot failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load slip")
		return
	}
	writeJSON(w, status, toSlipResponse(state, totals))
}

// GetSlip returns the user's current slip with computed totals.
// GET /api/slip
func (h *SlipHandler) GetSlip(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}
	h.writeSlip(w, r, userID, http.StatusOK)
}

// addSelectionResponse wraps the add endpoint response with what the toggle
// decided, so clients can animate insert vs remove vs replace.
type addSelectionResponse struct {
	Change slip.Change `json:"change"`
	slipResponse
}

// AddSelection inserts, toggles off, or replaces a selection on the slip.
// POST /api/slip/selections
func (h *SlipHandler) AddSelection(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	var sel domain.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if sel.EventID == "" {
		writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}
	if sel.Odds == 0 {
		writeError(w, http.StatusBadRequest, "odds must not be zero")
		return
	}
	if sel.BetType == domain.BetTypePlayerProp && sel.Prop == nil {
		writeError(w, http.StatusBadRequest, "playerPropData is required for player_prop selections")
		return
	}

	// The ID is server-derived from the market, never client-supplied.
	sel.ID = domain.MarketID(sel.EventID, sel.BetType, sel.Prop)

	change, err := h.slips.AddOrToggle(r.Context(), userID, sel)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: add selection failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update slip")
		return
	}

	state, totals, err := h.slips.Snapshot(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load slip")
		return
	}
	writeJSON(w, http.StatusOK, addSelectionResponse{
		Change:       change,
		slipResponse: toSlipResponse(state, totals),
	})
}

// RemoveSelection deletes a selection from the slip by its ID.
// DELETE /api/slip/selections/{id}
func (h *SlipHandler) RemoveSelection(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing selection id")
		return
	}

	removed, err := h.slips.Remove(r.Context(), userID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update slip")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "selection not on slip")
		return
	}
	h.writeSlip(w, r, userID, http.StatusOK)
}

// stakeRequest is the body for the stake endpoints.
type stakeRequest struct {
	Amount float64 `json:"amount"`
}

// SetStake updates the per-leg stake of one selection (straight mode).
// PUT /api/slip/selections/{id}/stake
func (h *SlipHandler) SetStake(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing selection id")
		return
	}

	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.slips.SetStake(r.Context(), userID, id, req.Amount); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update stake")
		return
	}
	h.writeSlip(w, r, userID, http.StatusOK)
}

// SetParlayStake updates the single combined stake (parlay mode).
// PUT /api/slip/parlay/stake
func (h *SlipHandler) SetParlayStake(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	var req stakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.slips.SetParlayStake(r.Context(), userID, req.Amount); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update stake")
		return
	}
	h.writeSlip(w, r, userID, http.StatusOK)
}

// modeRequest is the body for the mode endpoint.
type modeRequest struct {
	Mode domain.SlipMode `json:"mode"`
}

// SetMode switches the slip between straight and parlay mode.
// PUT /api/slip/mode
func (h *SlipHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Mode != domain.ModeStraight && req.Mode != domain.ModeParlay {
		writeError(w, http.StatusBadRequest, "mode must be straight or parlay")
		return
	}

	if err := h.slips.SetMode(r.Context(), userID, req.Mode); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update mode")
		return
	}
	h.writeSlip(w, r, userID, http.StatusOK)
}

// ClearSlip empties the slip and its persisted record.
// DELETE /api/slip
func (h *SlipHandler) ClearSlip(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	if err := h.slips.Clear(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear slip")
		return
	}
	h.writeSlip(w, r, userID, http.StatusOK)
}

// validateResponse wraps the validation endpoint response.
type validateResponse struct {
	Valid  bool             `json:"valid"`
	Issues []validate.Issue `json:"issues"`
}

// ValidateSlip runs the full validation pass without submitting anything.
// GET /api/slip/validate?balance=123.45
func (h *SlipHandler) ValidateSlip(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)

	state, _, err := h.slips.Snapshot(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load slip")
		return
	}

	issues := h.validator.Check(state, validate.Context{
		UserID:           userID,
		PoolID:           h.poolID,
		AvailableBalance: queryFloat(r, "balance", 0),
	})
	if issues == nil {
		issues = []validate.Issue{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	})
}

// placeRequest is the body for the place endpoint.
type placeRequest struct {
	Balance float64 `json:"balance"`
}

// placeSlipResponse wraps the placement endpoint response.
type placeSlipResponse struct {
	Result domain.PlacementResult `json:"result"`
	Slip   slipResponse           `json:"slip"`
}

// PlaceSlip validates and submits every bet on the slip. Validation failures
// return 422 with the issue list; a slip where every submission failed still
// returns 200 so clients read the per-bet outcomes from the result.
// POST /api/slip/place
func (h *SlipHandler) PlaceSlip(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	store, err := h.slips.Session(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load slip")
		return
	}

	result, issues, err := h.submitter.Place(r.Context(), store, validate.Context{
		UserID:           userID,
		PoolID:           h.poolID,
		AvailableBalance: req.Balance,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlipInvalid) {
			writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
				Valid:  false,
				Issues: issues,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: placement failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to place bets")
		return
	}

	if h.reporter != nil {
		if nerr := h.reporter.PlacementReported(r.Context(), userID, result); nerr != nil {
			h.logger.WarnContext(r.Context(), "handler: placement notification failed",
				slog.String("error", nerr.Error()),
			)
		}
	}

	state, totals, err := h.slips.Snapshot(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load slip")
		return
	}
	writeJSON(w, http.StatusOK, placeSlipResponse{
		Result: result,
		Slip:   toSlipResponse(state, totals),
	})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/wagerpool/betslip/internal/platform/catalog"
)

// CatalogService defines the catalog lookups the event handler needs.
type CatalogService interface {
	GetEvent(ctx context.Context, eventID string) (catalog.Event, error)
	GetOdds(ctx context.Context, eventID string) ([]catalog.Quote, error)
}

// EventHandler proxies read-only event and odds lookups to the catalog
// service so clients can refresh prices for slip selections.
type EventHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewEventHandler creates an EventHandler with the given catalog client.
func NewEventHandler(c CatalogService, logger *slog.Logger) *EventHandler {
	return &EventHandler{catalog: c, logger: logger}
}

// GetEvent returns catalog metadata for one event.
// GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}

	ev, err := h.catalog.GetEvent(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get event failed",
			slog.String("event_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "catalog lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// quotesResponse wraps the odds lookup response.
type quotesResponse struct {
	EventID string          `json:"eventId"`
	Quotes  []catalog.Quote `json:"quotes"`
}

// GetOdds returns the current quotes for every market on an event.
// GET /api/events/{id}/odds
func (h *EventHandler) GetOdds(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event id")
		return
	}

	quotes, err := h.catalog.GetOdds(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get odds failed",
			slog.String("event_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "catalog lookup failed")
		return
	}
	if quotes == nil {
		quotes = []catalog.Quote{}
	}
	writeJSON(w, http.StatusOK, quotesResponse{EventID: id, Quotes: quotes})
}

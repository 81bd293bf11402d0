// Package placer submits a validated slip to the settlement service and
// reconciles the slip with what the service actually accepted.
package placer

import (
	"context"
	"log/slog"

	"github.com/wagerpool/betslip/internal/domain"
	"github.com/wagerpool/betslip/internal/slip"
	"github.com/wagerpool/betslip/internal/validate"
)

// genericFailure is reported for a leg whose submission died in transit with
// no structured verdict from the server.
const genericFailure = "bet could not be placed, please try again"

// BetPlacer is the interface through which the orchestrator submits wagers.
// It is implemented by the settlement API client.
type BetPlacer interface {
	PlaceBet(ctx context.Context, ticket domain.BetTicket) (domain.PlaceOutcome, error)
	PlaceParlay(ctx context.Context, ticket domain.ParlayTicket) (domain.PlaceOutcome, error)
}

// Orchestrator validates a slip, submits it as one parlay or N straight
// wagers, and removes from the slip exactly the selections the settlement
// service accepted. Validation failures never reach the network.
type Orchestrator struct {
	client    BetPlacer
	records   domain.SlipRecordStore
	validator *validate.Engine
	logger    *slog.Logger
}

// New creates an Orchestrator. records may be nil when the deployment has no
// persistence configured.
func New(client BetPlacer, records domain.SlipRecordStore, validator *validate.Engine, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:    client,
		records:   records,
		validator: validator,
		logger:    logger.With(slog.String("component", "placer")),
	}
}

// Place runs the full submission flow for one slip. When validation fails the
// returned issues are non-empty, the error is domain.ErrSlipInvalid, and no
// network call is made. Otherwise the result partitions every submitted item
// into placed and failed.
//
// Straight legs are submitted strictly sequentially: each response is awaited
// before the next request goes out, which bounds in-flight exposure and keeps
// result order deterministic. Cancellation is honored only between legs; a
// request already in flight always runs to completion so the slip never
// disagrees with what the settlement service accepted.
func (o *Orchestrator) Place(ctx context.Context, store *slip.Store, identity validate.Context) (domain.PlacementResult, []validate.Issue, error) {
	state := store.Snapshot()

	if issues := o.validator.Check(state, identity); len(issues) > 0 {
		return domain.PlacementResult{}, issues, domain.ErrSlipInvalid
	}

	var result domain.PlacementResult
	if state.Mode == domain.ModeParlay {
		result = o.placeParlay(ctx, state, identity)
	} else {
		result = o.placeStraight(ctx, state, identity)
	}
	result.TotalStake = slip.ComputeTotals(state).Stake

	o.reconcile(ctx, store, identity.UserID, result)
	return result, nil, nil
}

// placeParlay submits the whole slip as one wager.
func (o *Orchestrator) placeParlay(ctx context.Context, state domain.SlipState, identity validate.Context) domain.PlacementResult {
	ticket := domain.ParlayTicket{
		User:  identity.UserID,
		Pool:  identity.PoolID,
		Stake: state.ParlayStake,
		Legs:  make([]domain.ParlayLeg, 0, len(state.Selections)),
	}
	labels := make([]string, 0, len(state.Selections))
	for _, sel := range state.Selections {
		ticket.Legs = append(ticket.Legs, domain.ParlayLeg{
			EventID:  sel.EventID,
			LeagueID: sel.LeagueID,
			BetType:  sel.BetType,
			Outcome:  sel.Outcome,
			Prop:     sel.Prop,
		})
		labels = append(labels, sel.Label())
	}

	out, err := o.client.PlaceParlay(ctx, ticket)
	if err != nil {
		o.logger.ErrorContext(ctx, "parlay submission failed",
			slog.Int("legs", len(ticket.Legs)),
			slog.String("error", err.Error()),
		)
		out = domain.PlaceOutcome{Success: false, Message: genericFailure}
	}

	// One item either way; the ids of all legs ride along so reconciliation
	// can clear them on success.
	var result domain.PlacementResult
	for i, sel := range state.Selections {
		item := domain.ItemOutcome{ID: sel.ID, Label: labels[i]}
		if out.Success {
			result.Placed = append(result.Placed, item)
		} else {
			item.Error = out.Message
			result.Failed = append(result.Failed, item)
		}
	}
	return result
}

// placeStraight submits each leg as its own wager, one at a time. A leg's
// failure never cancels the rest; each wager stands alone.
func (o *Orchestrator) placeStraight(ctx context.Context, state domain.SlipState, identity validate.Context) domain.PlacementResult {
	var result domain.PlacementResult
	cancelled := false

	for _, sel := range state.Selections {
		item := domain.ItemOutcome{ID: sel.ID, Label: sel.Label()}

		if cancelled || ctx.Err() != nil {
			cancelled = true
			item.Error = "submission stopped before this bet was sent"
			result.Failed = append(result.Failed, item)
			continue
		}

		ticket := domain.BetTicket{
			User:     identity.UserID,
			Pool:     identity.PoolID,
			EventID:  sel.EventID,
			LeagueID: sel.LeagueID,
			BetType:  sel.BetType,
			Outcome:  sel.Outcome,
			Stake:    sel.Stake,
			Prop:     sel.Prop,
		}

		out, err := o.client.PlaceBet(ctx, ticket)
		if err != nil {
			o.logger.ErrorContext(ctx, "bet submission failed",
				slog.String("selection_id", sel.ID),
				slog.String("error", err.Error()),
			)
			out = domain.PlaceOutcome{Success: false, Message: genericFailure}
		}

		if out.Success {
			result.Placed = append(result.Placed, item)
		} else {
			if out.Message == "" {
				out.Message = genericFailure
			}
			item.Error = out.Message
			result.Failed = append(result.Failed, item)
		}
	}
	return result
}

// reconcile removes exactly the accepted selections from the slip and brings
// the persisted record in line. Failed legs stay on the slip for retry.
func (o *Orchestrator) reconcile(ctx context.Context, store *slip.Store, userID string, result domain.PlacementResult) {
	switch {
	case result.AllPlaced():
		store.Clear()
		o.clearRecord(ctx, userID)
	case len(result.Placed) > 0:
		for _, item := range result.Placed {
			store.Remove(item.ID)
		}
		o.saveRecord(ctx, userID, store.Snapshot().Selections)
	default:
		// Nothing was accepted; the slip is untouched.
	}

	o.logger.InfoContext(ctx, "placement reconciled",
		slog.String("user", userID),
		slog.Int("placed", len(result.Placed)),
		slog.Int("failed", len(result.Failed)),
	)
}

func (o *Orchestrator) clearRecord(ctx context.Context, userID string) {
	if o.records == nil {
		return
	}
	if err := o.records.Clear(ctx, userID); err != nil {
		o.logger.WarnContext(ctx, "failed to clear persisted slip",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) saveRecord(ctx context.Context, userID string, selections []domain.Selection) {
	if o.records == nil {
		return
	}
	if err := o.records.Save(ctx, userID, selections); err != nil {
		o.logger.WarnContext(ctx, "failed to save persisted slip",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Package notify reports wager placement outcomes to operator channels.
// Notifications fan out to all registered senders (Telegram, Discord) and can
// be filtered by event type so operators receive only the alerts they care
// about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wagerpool/betslip/internal/domain"
)

// Event types emitted by the slip engine.
const (
	EventPlacementOK      = "placement_ok"      // every submitted wager accepted
	EventPlacementPartial = "placement_partial" // some wagers rejected
	EventPlacementFailed  = "placement_failed"  // nothing accepted
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders, filtered by an
// allowed set of event types. An empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only events
// whose type appears in events are forwarded; an empty list allows all.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// PlacementReported sends the outcome of one placement run. The event type is
// derived from the result's shape.
func (n *Notifier) PlacementReported(ctx context.Context, userID string, result domain.PlacementResult) error {
	event := EventPlacementFailed
	switch {
	case result.AllPlaced():
		event = EventPlacementOK
	case len(result.Placed) > 0:
		event = EventPlacementPartial
	}

	title := fmt.Sprintf("Placement: %d placed, %d failed", len(result.Placed), len(result.Failed))

	var b strings.Builder
	fmt.Fprintf(&b, "user %s, total stake %.2f\n", userID, result.TotalStake)
	for _, item := range result.Failed {
		fmt.Fprintf(&b, "failed: %s (%s)\n", item.Label, item.Error)
	}

	return n.Notify(ctx, event, title, b.String())
}

// Notify sends a notification to all senders if the event type is allowed.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}

	if len(n.senders) == 0 {
		return nil
	}

	// A single sender failure must not block the remaining channels.
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// Package feed keeps the quoted prices on active slips current by listening
// to the catalog service's websocket odds stream.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wagerpool/betslip/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	reconnectDelay = 2 * time.Second
	resubPeriod    = 30 * time.Second
)

// QuoteHandler receives each odds update from the catalog stream.
type QuoteHandler func(eventID string, betType domain.BetType, prop *domain.PlayerProp, american int)

// SubscriptionSource supplies the event ids the feed should be watching. It
// is polled periodically so the subscription follows what is on the slips.
type SubscriptionSource func() []string

// CatalogFeed connects to the catalog websocket, subscribes to odds updates
// for the events currently on any slip, and invokes the handler for each
// price change. It reconnects with a fixed delay on disconnect.
type CatalogFeed struct {
	wsURL   string
	events  SubscriptionSource
	onQuote QuoteHandler
	logger  *slog.Logger
}

// NewCatalogFeed creates a feed. events is polled for the subscription set;
// onQuote is called for every odds update on a subscribed event.
func NewCatalogFeed(wsURL string, events SubscriptionSource, onQuote QuoteHandler, logger *slog.Logger) *CatalogFeed {
	return &CatalogFeed{
		wsURL:   wsURL,
		events:  events,
		onQuote: onQuote,
		logger:  logger.With(slog.String("component", "catalog_feed")),
	}
}

// subscribeCommand is the wire message that sets the watched event list.
type subscribeCommand struct {
	Action   string   `json:"action"` // always "subscribe"
	EventIDs []string `json:"eventIds"`
}

// quoteMessage is one odds update from the stream.
type quoteMessage struct {
	Type      string `json:"type"` // only "odds" is handled
	EventID   string `json:"eventId"`
	BetType   string `json:"betType"`
	Odds      int    `json:"odds"`
	PlayerID  string `json:"playerId,omitempty"`
	StatType  string `json:"statType,omitempty"`
}

// Run connects and processes updates until ctx is cancelled, reconnecting on
// disconnect.
func (f *CatalogFeed) Run(ctx context.Context) error {
	if f.wsURL == "" {
		f.logger.Info("no catalog ws url configured, feed disabled")
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.runConnection(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("catalog ws disconnected, reconnecting",
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *CatalogFeed) runConnection(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, f.wsURL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("feed: dial %s: %w", f.wsURL, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := f.subscribe(conn, f.events()); err != nil {
		return err
	}

	// Writer side: pings plus periodic re-subscription so the watched set
	// tracks the slips. The reader side owns conn teardown via the deadline.
	writeErr := make(chan error, 1)
	writerCtx, stopWriter := context.WithCancel(ctx)
	defer stopWriter()
	go f.writer(writerCtx, conn, writeErr)

	for {
		select {
		case err := <-writeErr:
			return err
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: read: %w", domain.ErrWSDisconnect)
		}

		var msg quoteMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			f.logger.Debug("unparseable feed message", slog.String("error", err.Error()))
			continue
		}
		if msg.Type != "odds" || msg.Odds == 0 {
			continue
		}

		var prop *domain.PlayerProp
		if msg.PlayerID != "" {
			prop = &domain.PlayerProp{PlayerID: msg.PlayerID, StatType: msg.StatType}
		}
		f.onQuote(msg.EventID, domain.BetType(msg.BetType), prop, msg.Odds)
	}
}

func (f *CatalogFeed) writer(ctx context.Context, conn *websocket.Conn, errCh chan<- error) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	resub := time.NewTicker(resubPeriod)
	defer resub.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				errCh <- fmt.Errorf("feed: ping: %w", err)
				return
			}
		case <-resub.C:
			if err := f.subscribe(conn, f.events()); err != nil {
				errCh <- err
				return
			}
		}
	}
}

func (f *CatalogFeed) subscribe(conn *websocket.Conn, eventIDs []string) error {
	cmd := subscribeCommand{Action: "subscribe", EventIDs: eventIDs}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("feed: subscribe: %w", err)
	}
	return nil
}

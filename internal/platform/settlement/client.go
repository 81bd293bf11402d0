// Package settlement is the REST client for the settlement API, the external
// service that accepts or rejects wagers.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wagerpool/betslip/internal/crypto"
	"github.com/wagerpool/betslip/internal/domain"
)

// Client is the REST client for the settlement API.
type Client struct {
	baseURL    string
	auth       *crypto.HMACAuth
	httpClient *http.Client
}

// NewClient creates a settlement API client. baseURL is the API root, e.g.
// "https://settle.example.com/api/v1". auth may be nil when the endpoint
// does not require signing (local development).
func NewClient(baseURL string, auth *crypto.HMACAuth) *Client {
	return &Client{
		baseURL: baseURL,
		auth:    auth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PlaceBet submits one straight wager. A reachable server that rejects the
// wager yields Success=false and the server's message with a nil error;
// transport problems yield a non-nil error.
func (c *Client) PlaceBet(ctx context.Context, ticket domain.BetTicket) (domain.PlaceOutcome, error) {
	req := placeBetRequest{
		User:      ticket.User,
		Pool:      ticket.Pool,
		EventID:   ticket.EventID,
		LeagueID:  ticket.LeagueID,
		BetType:   string(ticket.BetType),
		Selection: string(ticket.Outcome),
		Stake:     ticket.Stake,
	}
	if p := ticket.Prop; p != nil {
		req.PlayerID = p.PlayerID
		req.PlayerName = p.PlayerName
		req.StatType = p.StatType
		req.Display = p.DisplayName
		req.Category = p.Category
	}

	resp, err := c.doPost(ctx, "/bets", req)
	if err != nil {
		return domain.PlaceOutcome{}, fmt.Errorf("settlement: place bet: %w", err)
	}
	return domain.PlaceOutcome{Success: resp.Success, BetID: resp.BetID, Message: resp.Error}, nil
}

// PlaceParlay submits one combined wager over the ticket's legs.
func (c *Client) PlaceParlay(ctx context.Context, ticket domain.ParlayTicket) (domain.PlaceOutcome, error) {
	req := placeParlayRequest{
		User:  ticket.User,
		Pool:  ticket.Pool,
		Stake: ticket.Stake,
		Legs:  make([]legSpec, 0, len(ticket.Legs)),
	}
	for _, leg := range ticket.Legs {
		spec := legSpec{
			EventID:   leg.EventID,
			LeagueID:  leg.LeagueID,
			BetType:   string(leg.BetType),
			Selection: string(leg.Outcome),
		}
		if p := leg.Prop; p != nil {
			spec.PlayerID = p.PlayerID
			spec.PlayerName = p.PlayerName
			spec.StatType = p.StatType
			spec.Display = p.DisplayName
			spec.Category = p.Category
		}
		req.Legs = append(req.Legs, spec)
	}

	resp, err := c.doPost(ctx, "/bets/parlay", req)
	if err != nil {
		return domain.PlaceOutcome{}, fmt.Errorf("settlement: place parlay: %w", err)
	}
	return domain.PlaceOutcome{Success: resp.Success, BetID: resp.BetID, Message: resp.Error}, nil
}

// doPost sends a signed JSON POST and decodes the standard place response.
// Non-2xx statuses with a decodable body still return the body's verdict so
// a structured rejection is never mistaken for a transport failure.
func (c *Client) doPost(ctx context.Context, path string, payload any) (placeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return placeResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return placeResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.auth != nil {
		for k, v := range c.auth.Headers(http.MethodPost, path, string(body)) {
			req.Header.Set(k, v)
		}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return placeResponse{}, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return placeResponse{}, fmt.Errorf("read response: %w", err)
	}

	var resp placeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return placeResponse{}, fmt.Errorf("status %d: %s", httpResp.StatusCode, respBody)
		}
		return placeResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

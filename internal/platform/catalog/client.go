// Package catalog is the REST client for the catalog service, which supplies
// event metadata and current odds for display.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the REST client for the catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given API root.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetEvent returns metadata for a single event.
func (c *Client) GetEvent(ctx context.Context, eventID string) (Event, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/events/%s", url.PathEscape(eventID)))
	if err != nil {
		return Event{}, fmt.Errorf("catalog: get event %s: %w", eventID, err)
	}

	var resp struct {
		Event Event `json:"event"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Event{}, fmt.Errorf("catalog: decode event: %w", err)
	}
	return resp.Event, nil
}

// GetOdds returns the current quotes for an event's markets.
func (c *Client) GetOdds(ctx context.Context, eventID string) ([]Quote, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/events/%s/odds", url.PathEscape(eventID)))
	if err != nil {
		return nil, fmt.Errorf("catalog: get odds %s: %w", eventID, err)
	}

	var resp struct {
		Quotes []Quote `json:"quotes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("catalog: decode odds: %w", err)
	}
	return resp.Quotes, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

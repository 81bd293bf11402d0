package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wagerpool/betslip/internal/domain"
)

// SlipStore implements domain.SlipRecordStore on a single Redis string per
// user holding the JSON-serialized selection list.
//
// Key schema:
//
//	betslip:slip:{userID} - JSON slipRecord
type SlipStore struct {
	rdb *redis.Client
}

// NewSlipStore creates a SlipStore backed by the given Client.
func NewSlipStore(c *Client) *SlipStore {
	return &SlipStore{rdb: c.Underlying()}
}

func slipKey(userID string) string { return "betslip:slip:" + userID }

// slipRecord is the persisted shape. V guards against schema drift; records
// with an unexpected version load as empty.
type slipRecord struct {
	V          int                `json:"v"`
	Selections []domain.Selection `json:"selections"`
}

// Save overwrites the user's persisted selections.
func (s *SlipStore) Save(ctx context.Context, userID string, selections []domain.Selection) error {
	rec := slipRecord{V: domain.SlipRecordVersion, Selections: selections}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal slip for %s: %w", userID, err)
	}
	if err := s.rdb.Set(ctx, slipKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: save slip for %s: %w", userID, err)
	}
	return nil
}

// Load returns the persisted selections minus any whose event has already
// started. When the staleness filter drops entries, the surviving list is
// re-saved so storage matches what the caller will show.
func (s *SlipStore) Load(ctx context.Context, userID string, now time.Time) ([]domain.Selection, error) {
	data, err := s.rdb.Get(ctx, slipKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: load slip for %s: %w", userID, err)
	}

	var rec slipRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("redis: unmarshal slip for %s: %w", userID, err)
	}
	if rec.V != domain.SlipRecordVersion {
		return nil, nil
	}

	fresh, dropped := domain.FilterStarted(rec.Selections, now)
	if dropped > 0 {
		if err := s.Save(ctx, userID, fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

// Clear deletes the persisted record.
func (s *SlipStore) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, slipKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis: clear slip for %s: %w", userID, err)
	}
	return nil
}

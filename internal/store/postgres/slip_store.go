package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wagerpool/betslip/internal/domain"
)

// SlipStore implements domain.SlipRecordStore with one row per user.
type SlipStore struct {
	pool *pgxpool.Pool
}

// NewSlipStore creates a SlipStore backed by the given connection pool.
func NewSlipStore(pool *pgxpool.Pool) *SlipStore {
	return &SlipStore{pool: pool}
}

// Save upserts the user's persisted selections.
func (s *SlipStore) Save(ctx context.Context, userID string, selections []domain.Selection) error {
	data, err := json.Marshal(selections)
	if err != nil {
		return fmt.Errorf("postgres: marshal slip for %s: %w", userID, err)
	}

	const query = `
		INSERT INTO bet_slips (user_id, version, selections, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET version = $2, selections = $3, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, userID, domain.SlipRecordVersion, data); err != nil {
		return fmt.Errorf("postgres: save slip for %s: %w", userID, err)
	}
	return nil
}

// Load returns the persisted selections minus already-started events,
// re-saving when the filter dropped anything.
func (s *SlipStore) Load(ctx context.Context, userID string, now time.Time) ([]domain.Selection, error) {
	const query = `SELECT version, selections FROM bet_slips WHERE user_id = $1`

	var version int
	var data []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: load slip for %s: %w", userID, err)
	}
	if version != domain.SlipRecordVersion {
		return nil, nil
	}

	var selections []domain.Selection
	if err := json.Unmarshal(data, &selections); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal slip for %s: %w", userID, err)
	}

	fresh, dropped := domain.FilterStarted(selections, now)
	if dropped > 0 {
		if err := s.Save(ctx, userID, fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

// Clear deletes the persisted record.
func (s *SlipStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM bet_slips WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("postgres: clear slip for %s: %w", userID, err)
	}
	return nil
}

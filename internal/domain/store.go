package domain

import (
	"context"
	"time"
)

// SlipRecordVersion is the schema version written into persisted slip
// records. Records with an unknown version are ignored on load.
const SlipRecordVersion = 1

// SlipRecordStore is the persistence port for the current slip. Saves are
// best-effort side effects: callers log failures and move on, they never
// block a slip mutation on storage.
type SlipRecordStore interface {
	// Save overwrites the persisted selections for the user.
	Save(ctx context.Context, userID string, selections []Selection) error
	// Load returns the persisted selections with already-started events
	// filtered out. When the filter drops anything, the store re-saves the
	// survivors so the record matches what the caller will show. A missing
	// record yields an empty slice, not an error.
	Load(ctx context.Context, userID string, now time.Time) ([]Selection, error)
	// Clear deletes the persisted record entirely.
	Clear(ctx context.Context, userID string) error
}

// pkg/store/store.go
package store

import (
	"context"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// MergeStats reports what one atomic merge did to the ledger.
type MergeStats struct {
	Inserted  int // new keys
	Coalesced int // existing keys whose null time field was filled in
}

// Ledger is the unified operations table. The uniqueness constraint on the
// dedupe key lives here, not in the calling code: MergeBatch must be a single
// atomic conditional insert-or-update, safe under concurrent invocations, and
// all-or-nothing on failure.
type Ledger interface {
	// Provision creates the ledger table, indexes and uniqueness constraint
	// if they do not exist. Safe to call repeatedly; never touches rows.
	Provision(ctx context.Context) error

	// MergeBatch applies a batch of keyed operations: insert rows whose key
	// is absent, fill the null start/end time of rows whose key is present.
	// A populated time field is never replaced.
	MergeBatch(ctx context.Context, ops []model.UnifiedOperation) (MergeStats, error)

	// Recent returns the newest rows, most recently created first.
	Recent(ctx context.Context, limit int) ([]model.UnifiedOperation, error)

	// Count returns the total number of ledger rows.
	Count(ctx context.Context) (int64, error)
}

// pkg/store/memory.go
package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// MemoryLedger is an in-memory Ledger with the same merge semantics as the
// SQL Server implementation. Used in simulation mode and in tests.
type MemoryLedger struct {
	mu    sync.Mutex
	byKey map[[32]byte]*model.UnifiedOperation
	order []*model.UnifiedOperation
	seq   int64
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byKey: make(map[[32]byte]*model.UnifiedOperation),
	}
}

// Provision is a no-op: the map is the schema.
func (m *MemoryLedger) Provision(ctx context.Context) error {
	return nil
}

// MergeBatch applies the batch atomically under the ledger lock.
func (m *MemoryLedger) MergeBatch(ctx context.Context, ops []model.UnifiedOperation) (MergeStats, error) {
	if err := ctx.Err(); err != nil {
		return MergeStats{}, &TransientError{Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var stats MergeStats
	for i := range ops {
		op := ops[i]
		var key [32]byte
		copy(key[:], op.DedupeKey)

		existing, ok := m.byKey[key]
		if !ok {
			m.seq++
			op.ID = m.seq
			op.CreatedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
			stored := op
			m.byKey[key] = &stored
			m.order = append(m.order, &stored)
			stats.Inserted++
			continue
		}

		// Coalesce-missing-field: fill only what is null, never overwrite.
		if existing.StartTime == nil && op.StartTime != nil {
			t := *op.StartTime
			existing.StartTime = &t
		}
		if existing.EndTime == nil && op.EndTime != nil {
			t := *op.EndTime
			existing.EndTime = &t
		}
		existing.Day = existing.DerivedDay()
		existing.DurationSec = existing.DerivedDuration()
		stats.Coalesced++
	}

	return stats, nil
}

// Recent returns up to limit rows, newest first.
func (m *MemoryLedger) Recent(ctx context.Context, limit int) ([]model.UnifiedOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.order) {
		limit = len(m.order)
	}

	out := make([]model.UnifiedOperation, 0, limit)
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.order[i])
	}
	return out, nil
}

// Count returns the number of ledger rows.
func (m *MemoryLedger) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.order)), nil
}

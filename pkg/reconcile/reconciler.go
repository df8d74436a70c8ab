// pkg/reconcile/reconciler.go
package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/metrics"
	"github.com/sedi-apps/timetrack/pkg/model"
	"github.com/sedi-apps/timetrack/pkg/source"
	"github.com/sedi-apps/timetrack/pkg/store"
)

// Reconciler merges the raw start/end event streams into the unified ledger.
// Each Run is an independent short-lived invocation; there is no background
// loop and no in-process parallelism. Safety under concurrent runs comes from
// the store's uniqueness constraint and atomic merge, never from locking here.
type Reconciler struct {
	events source.Events
	ledger store.Ledger
	logger *zap.Logger
}

// New creates a reconciler over an event source and a ledger.
func New(events source.Events, ledger store.Ledger, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		events: events,
		ledger: ledger,
		logger: logger.Named("reconciler"),
	}
}

// Run executes one reconciliation over rows at or after the since date
// (all rows when since is nil). The whole batch succeeds or fails as a unit;
// on failure no partial writes are observable and the caller decides whether
// to retry.
func (r *Reconciler) Run(ctx context.Context, since *time.Time) (*RunResult, error) {
	result := NewRunResult(since)

	r.logger.Info("Starting reconciliation",
		zap.String("batchID", result.BatchID),
		zap.Timep("sinceDate", since))

	starts, err := r.events.Starts(ctx, since)
	if err != nil {
		result.Complete(false)
		metrics.RecordReconcile(result.Success, result.Duration, 0, 0)
		return result, fmt.Errorf("failed to fetch start events: %w", err)
	}

	ends, err := r.events.Ends(ctx, since)
	if err != nil {
		result.Complete(false)
		metrics.RecordReconcile(result.Success, result.Duration, 0, 0)
		return result, fmt.Errorf("failed to fetch end events: %w", err)
	}

	batch := r.buildBatch(starts, ends, result.BatchID)
	result.RowsFetched = len(starts) + len(ends)

	stats, err := r.ledger.MergeBatch(ctx, batch)
	if err != nil {
		result.Complete(false)
		metrics.RecordReconcile(result.Success, result.Duration, 0, 0)
		return result, fmt.Errorf("ledger merge failed: %w", err)
	}

	result.RowsInserted = stats.Inserted
	result.RowsCoalesced = stats.Coalesced
	result.Complete(true)
	metrics.RecordReconcile(result.Success, result.Duration, stats.Inserted, stats.Coalesced)

	r.verify(ctx, result, len(batch))

	r.logger.Info("Reconciliation completed",
		zap.String("batchID", result.BatchID),
		zap.Int("rowsFetched", result.RowsFetched),
		zap.Int("inserted", result.RowsInserted),
		zap.Int("coalesced", result.RowsCoalesced),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// buildBatch normalizes and keys the raw rows, collapsing duplicate keys
// within the batch. The merge statement requires at most one source row per
// target key, so an in-batch duplicate coalesces into the first occurrence
// the same way the store would coalesce it.
func (r *Reconciler) buildBatch(starts, ends []model.RawEvent, batchID string) []model.UnifiedOperation {
	batch := make([]model.UnifiedOperation, 0, len(starts)+len(ends))
	seen := make(map[[32]byte]int, len(starts)+len(ends))

	add := func(raw model.RawEvent) {
		ev := Normalize(raw)
		op := Operation(ev, batchID)

		var key [32]byte
		copy(key[:], op.DedupeKey)

		if idx, dup := seen[key]; dup {
			prev := &batch[idx]
			if prev.StartTime == nil && op.StartTime != nil {
				prev.StartTime = op.StartTime
			}
			if prev.EndTime == nil && op.EndTime != nil {
				prev.EndTime = op.EndTime
			}
			prev.Day = prev.DerivedDay()
			prev.DurationSec = prev.DerivedDuration()
			return
		}

		seen[key] = len(batch)
		batch = append(batch, op)
	}

	for _, raw := range starts {
		add(raw)
	}
	for _, raw := range ends {
		add(raw)
	}

	return batch
}

// verify cross-checks the ledger row count against what the merge reported.
// A mismatch is logged, not fatal: the merge already committed.
func (r *Reconciler) verify(ctx context.Context, result *RunResult, batchSize int) {
	count, err := r.ledger.Count(ctx)
	if err != nil {
		r.logger.Debug("Skipping post-run verification", zap.Error(err))
		return
	}

	if count < int64(result.RowsInserted) {
		r.logger.Warn("Ledger count lower than rows inserted this run",
			zap.Int64("ledgerCount", count),
			zap.Int("inserted", result.RowsInserted),
			zap.Int("batchSize", batchSize))
	}
}

package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// RunResult is the outcome of one reconciliation invocation.
type RunResult struct {
	BatchID       string
	SinceDate     *time.Time
	RowsFetched   int
	RowsInserted  int
	RowsCoalesced int
	Success       bool
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}

// NewRunResult initializes a result with a fresh batch identifier.
func NewRunResult(since *time.Time) *RunResult {
	return &RunResult{
		BatchID:   uuid.New().String(),
		SinceDate: since,
		StartTime: time.Now(),
	}
}

// Complete marks the run finished and computes its duration.
func (r *RunResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

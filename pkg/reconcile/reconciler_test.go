package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/model"
	"github.com/sedi-apps/timetrack/pkg/store"
)

type stubEvents struct {
	starts []model.RawEvent
	ends   []model.RawEvent
	err    error
}

func (s *stubEvents) Starts(ctx context.Context, since *time.Time) ([]model.RawEvent, error) {
	return filterDay(s.starts, since), s.err
}

func (s *stubEvents) Ends(ctx context.Context, since *time.Time) ([]model.RawEvent, error) {
	return filterDay(s.ends, since), s.err
}

func filterDay(events []model.RawEvent, since *time.Time) []model.RawEvent {
	if since == nil {
		return events
	}
	out := make([]model.RawEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Timestamp.Before(*since) {
			out = append(out, ev)
		}
	}
	return out
}

type failingLedger struct {
	store.Ledger
}

func (f *failingLedger) MergeBatch(ctx context.Context, ops []model.UnifiedOperation) (store.MergeStats, error) {
	return store.MergeStats{}, errors.New("merge rejected")
}

func sampleEvents() *stubEvents {
	day := time.Date(2025, 9, 16, 8, 0, 0, 0, time.UTC)
	return &stubEvents{
		starts: []model.RawEvent{
			{Identity: "001", LaunchCode: "LT001", Phase: "P1", RubricCode: "R1", Kind: model.KindStart, Timestamp: day},
			{Identity: "140972", LaunchCode: "LT002", Phase: "P2", RubricCode: "R2", Kind: model.KindStart, Timestamp: day.Add(time.Hour)},
		},
		ends: []model.RawEvent{
			{Identity: "001", LaunchCode: "LT001", Phase: "P1", RubricCode: "R1", Kind: model.KindEnd, Timestamp: day.Add(8 * time.Hour)},
		},
	}
}

func TestReconciler_RunMergesAllRows(t *testing.T) {
	ledger := store.NewMemoryLedger()
	rec := New(sampleEvents(), ledger, zap.NewNop())

	result, err := rec.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.RowsFetched)
	assert.Equal(t, 3, result.RowsInserted)
	assert.Equal(t, 0, result.RowsCoalesced)
	assert.NotEmpty(t, result.BatchID)

	count, err := ledger.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestReconciler_RerunIsIdempotent(t *testing.T) {
	ledger := store.NewMemoryLedger()
	rec := New(sampleEvents(), ledger, zap.NewNop())

	_, err := rec.Run(context.Background(), nil)
	require.NoError(t, err)

	result, err := rec.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.RowsInserted)
	assert.Equal(t, 3, result.RowsCoalesced)

	count, err := ledger.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestReconciler_StartAndEndStayDistinctRows(t *testing.T) {
	ledger := store.NewMemoryLedger()
	rec := New(sampleEvents(), ledger, zap.NewNop())

	_, err := rec.Run(context.Background(), nil)
	require.NoError(t, err)

	rows, err := ledger.Recent(context.Background(), 10)
	require.NoError(t, err)

	statuses := map[string]int{}
	for _, row := range rows {
		if row.Identity == "001" {
			statuses[row.StatusWire]++
		}
	}
	assert.Equal(t, 1, statuses["DEBUT"])
	assert.Equal(t, 1, statuses["PAUSE"])
}

func TestReconciler_DuplicateSourceRowsCollapseInBatch(t *testing.T) {
	day := time.Date(2025, 9, 16, 8, 0, 0, 0, time.UTC)
	dup := model.RawEvent{Identity: "001", LaunchCode: "LT001", Kind: model.KindStart, Timestamp: day}

	ledger := store.NewMemoryLedger()
	rec := New(&stubEvents{starts: []model.RawEvent{dup, dup}}, ledger, zap.NewNop())

	result, err := rec.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowsFetched)
	assert.Equal(t, 1, result.RowsInserted)

	count, err := ledger.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReconciler_SinceDateRestrictsIngestion(t *testing.T) {
	events := &stubEvents{
		starts: []model.RawEvent{
			{Identity: "001", LaunchCode: "LT001", Kind: model.KindStart, Timestamp: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)},
			{Identity: "002", LaunchCode: "LT002", Kind: model.KindStart, Timestamp: time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)},
		},
	}

	ledger := store.NewMemoryLedger()
	rec := New(events, ledger, zap.NewNop())

	since := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	result, err := rec.Run(context.Background(), &since)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsFetched)
	assert.Equal(t, 1, result.RowsInserted)

	rows, err := ledger.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "002", rows[0].Identity)
}

func TestReconciler_MergeFailureReportsNoPartialResult(t *testing.T) {
	rec := New(sampleEvents(), &failingLedger{}, zap.NewNop())

	result, err := rec.Run(context.Background(), nil)
	require.Error(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RowsInserted)
	assert.Equal(t, 0, result.RowsCoalesced)
}

func TestReconciler_FetchFailurePropagates(t *testing.T) {
	rec := New(&stubEvents{err: errors.New("source down")}, store.NewMemoryLedger(), zap.NewNop())

	result, err := rec.Run(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, result.Success)
}

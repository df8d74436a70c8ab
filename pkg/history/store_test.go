package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/model"
)

func entry(launch string) model.HistoryEntry {
	return model.HistoryEntry{
		RecordNo:   "1",
		Operator:   "001",
		LaunchCode: launch,
		Phase:      "P1",
		Minutes:    42,
		Seconds:    10,
		State:      "TERMINE",
		WorkDay:    time.Date(2025, 9, 16, 8, 0, 0, 0, time.UTC),
	}
}

func TestStore_InitializesEmptyFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, zap.NewNop())
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "store.json"))
	assert.NoError(t, statErr)

	records, err := s.Records("001")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_AppendPrependsNewest(t *testing.T) {
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Append("001", entry("LT001")))
	require.NoError(t, s.Append("001", entry("LT002")))

	records, err := s.Records("001")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "LT002", records[0].LaunchCode)
	assert.Equal(t, "LT001", records[1].LaunchCode)
}

func TestStore_RoundTripsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Append("140972", entry("LT001")))

	reopened, err := NewStore(dir, zap.NewNop())
	require.NoError(t, err)

	records, err := reopened.Records("140972")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 42, records[0].Minutes)
	assert.Equal(t, "TERMINE", records[0].State)
}

func TestStore_AllGroupsByOperator(t *testing.T) {
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Append("001", entry("LT001")))
	require.NoError(t, s.Append("002", entry("LT002")))

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all["001"], 1)
}

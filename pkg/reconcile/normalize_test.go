package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedi-apps/timetrack/pkg/model"
)

func TestNormalize_TrimsAndClassifies(t *testing.T) {
	ts := time.Date(2025, 9, 16, 8, 30, 0, 0, time.UTC)
	raw := model.RawEvent{
		Identity:    "  001  ",
		LaunchCode:  " LT001 ",
		Phase:       "P1",
		RubricCode:  "R1",
		Kind:        model.KindStart,
		Timestamp:   ts,
		SourceTable: "GPSQL.dbo.abetemps_temps",
	}

	ev := Normalize(raw)

	assert.Equal(t, "001", ev.Identity)
	require.NotNil(t, ev.LaunchCode)
	assert.Equal(t, "LT001", *ev.LaunchCode)
	assert.Equal(t, model.StatusStart, ev.Status)
	require.NotNil(t, ev.StartTime)
	assert.Equal(t, ts, *ev.StartTime)
	assert.Nil(t, ev.EndTime)
}

func TestNormalize_EmptyFieldsBecomeAbsent(t *testing.T) {
	ev := Normalize(model.RawEvent{
		Identity:   "002",
		LaunchCode: "   ",
		Phase:      "",
		RubricCode: "\t",
		Kind:       model.KindStart,
		Timestamp:  time.Now(),
	})

	assert.Nil(t, ev.LaunchCode)
	assert.Nil(t, ev.Phase)
	assert.Nil(t, ev.RubricCode)
}

func TestNormalize_EndEventFillsEndSide(t *testing.T) {
	ts := time.Date(2025, 9, 16, 17, 0, 0, 0, time.UTC)
	ev := Normalize(model.RawEvent{
		Identity:  "001",
		Kind:      model.KindEnd,
		Timestamp: ts,
	})

	assert.Nil(t, ev.StartTime)
	require.NotNil(t, ev.EndTime)
	assert.Equal(t, ts, *ev.EndTime)
	assert.Equal(t, model.StatusEnd, ev.Status)
}

func TestNormalize_ZeroTimestampIsAbsent(t *testing.T) {
	ev := Normalize(model.RawEvent{Identity: "001", Kind: model.KindStart})

	assert.Nil(t, ev.StartTime)
	assert.Nil(t, ev.EndTime)
}

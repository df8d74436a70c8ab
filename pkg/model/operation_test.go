package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerivedDay_UsesWhicheverSideIsPresent(t *testing.T) {
	start := time.Date(2025, 9, 16, 8, 30, 0, 0, time.UTC)
	end := time.Date(2025, 9, 17, 2, 0, 0, 0, time.UTC)

	op := UnifiedOperation{StartTime: &start}
	assert.Equal(t, time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC), op.DerivedDay())

	op = UnifiedOperation{EndTime: &end}
	assert.Equal(t, time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC), op.DerivedDay())

	// Overnight rows take the start side's date.
	op = UnifiedOperation{StartTime: &start, EndTime: &end}
	assert.Equal(t, time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC), op.DerivedDay())

	empty := UnifiedOperation{}
	assert.True(t, empty.DerivedDay().IsZero())
}

func TestDerivedDuration_NilWhenEitherSideMissing(t *testing.T) {
	start := time.Date(2025, 9, 16, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	assert.Nil(t, (&UnifiedOperation{StartTime: &start}).DerivedDuration())
	assert.Nil(t, (&UnifiedOperation{EndTime: &end}).DerivedDuration())

	op := &UnifiedOperation{StartTime: &start, EndTime: &end}
	if d := op.DerivedDuration(); assert.NotNil(t, d) {
		assert.Equal(t, int64(5400), *d)
	}
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWireValues(t *testing.T) {
	assert.Equal(t, "DEBUT", StatusStart.String())
	assert.Equal(t, "PAUSE", StatusEnd.String())
}

func TestParseStatus_RoundTrip(t *testing.T) {
	for _, status := range []Status{StatusStart, StatusEnd} {
		parsed, err := ParseStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}
}

func TestParseStatus_RejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "debut", "FIN", "EN_COURS"} {
		_, err := ParseStatus(raw)
		assert.Error(t, err, "value %q must be rejected", raw)
	}
}

func TestParseKind_RejectsUnknown(t *testing.T) {
	kind, err := ParseKind("START")
	require.NoError(t, err)
	assert.Equal(t, KindStart, kind)

	_, err = ParseKind("RESTART")
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusStart, StatusFor(KindStart))
	assert.Equal(t, StatusEnd, StatusFor(KindEnd))
}

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusLoaded, "LOADED"},
		{StatusStarted, "STARTED"},
		{StatusExtracting, "EXTRACTING"},
		{StatusStopped, "STOPPED"},
		{StatusAborted, "ABORTED"},
		{StatusFailedLoad, "FAILED_LOAD"},
		{Status(99), "Status(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" failed_load ")
	require.NoError(t, err)
	assert.Equal(t, StatusFailedLoad, s)

	_, err = ParseStatus("RUNNING")
	assert.Error(t, err)
}

func TestStatus_Restartable(t *testing.T) {
	assert.True(t, StatusLoaded.restartable())
	assert.True(t, StatusStarted.restartable())
	assert.True(t, StatusStopped.restartable())
	assert.False(t, StatusExtracting.restartable())
	assert.False(t, StatusAborted.restartable())
	assert.False(t, StatusFailedLoad.restartable())
}

package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turbot/tailpipe-extractor/constants"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want slog.Leveler
	}{
		{name: "debug", env: "debug", want: slog.LevelDebug},
		{name: "mixed case", env: "WaRn", want: slog.LevelWarn},
		{name: "off", env: "off", want: levelOff},
		{name: "unset defaults to off", env: "", want: levelOff},
		{name: "unknown defaults to off", env: "verbose", want: levelOff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.EnvLogLevel, tt.env)
			assert.Equal(t, tt.want, getLogLevel())
		})
	}
}

func TestIsRedacted(t *testing.T) {
	assert.True(t, isRedacted("secret_key"))
	assert.True(t, isRedacted("Credentials"))
	assert.False(t, isRedacted("artifact"))
}

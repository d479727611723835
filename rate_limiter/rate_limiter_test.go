package rate_limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_MaxConcurrency(t *testing.T) {
	l := NewLimiter(&Definition{Name: "downloads", MaxConcurrency: 1})

	require.NoError(t, l.Wait(context.Background()))
	assert.False(t, l.TryAcquire(), "second slot should not be available")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)

	l.Release()
	assert.True(t, l.TryAcquire())
	l.Release()
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(&Definition{Name: "downloads"})
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.True(t, l.TryAcquire())
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr int
	}{
		{name: "valid", def: Definition{Name: "a", MaxConcurrency: 2}},
		{name: "no name", def: Definition{MaxConcurrency: 2}, wantErr: 1},
		{name: "rate without bucket", def: Definition{Name: "a", FillRate: 1}, wantErr: 1},
		{name: "negative", def: Definition{Name: "a", MaxConcurrency: -1}, wantErr: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.def.Validate(), tt.wantErr)
		})
	}
}

package artifact_source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestFetchConfig_Timeouts(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *FetchConfig
		wantConnect time.Duration
		wantRead    time.Duration
		wantMax     int
	}{
		{name: "nil", cfg: nil, wantConnect: 5 * time.Second, wantRead: 5 * time.Second, wantMax: 4},
		{name: "empty", cfg: &FetchConfig{}, wantConnect: 5 * time.Second, wantRead: 5 * time.Second, wantMax: 4},
		{
			name:        "set",
			cfg:         &FetchConfig{ConnectTimeout: intPtr(250), ReadTimeout: intPtr(1500), MaxConcurrency: intPtr(2)},
			wantConnect: 250 * time.Millisecond,
			wantRead:    1500 * time.Millisecond,
			wantMax:     2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantConnect, tt.cfg.GetConnectTimeout())
			assert.Equal(t, tt.wantRead, tt.cfg.GetReadTimeout())
			assert.Equal(t, tt.wantMax, tt.cfg.GetMaxConcurrency())
		})
	}
}

func TestFetchConfig_Validate(t *testing.T) {
	key := "AKIA"
	endpoint := "http://localhost:4443"
	creds := "{}"
	tests := []struct {
		name    string
		cfg     *FetchConfig
		wantErr bool
	}{
		{name: "empty", cfg: &FetchConfig{}},
		{name: "negative connect timeout", cfg: &FetchConfig{ConnectTimeout: intPtr(-1)}, wantErr: true},
		{name: "negative read timeout", cfg: &FetchConfig{ReadTimeout: intPtr(-1)}, wantErr: true},
		{name: "zero concurrency", cfg: &FetchConfig{MaxConcurrency: intPtr(0)}, wantErr: true},
		{name: "access key without secret", cfg: &FetchConfig{Aws: &AwsConnection{AccessKey: &key}}, wantErr: true},
		{name: "gcp endpoint with credentials", cfg: &FetchConfig{Gcp: &GcpConnection{Endpoint: &endpoint, Credentials: &creds}}, wantErr: true},
		{name: "gcp endpoint", cfg: &FetchConfig{Gcp: &GcpConnection{Endpoint: &endpoint}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

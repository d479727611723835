package artifact_source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketAndKey(t *testing.T) {
	tests := []struct {
		name       string
		location   string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "s3", location: "s3://my-bucket/logs/2024/a.csv", wantBucket: "my-bucket", wantKey: "logs/2024/a.csv"},
		{name: "gs", location: "gs://my-bucket/a.gz", wantBucket: "my-bucket", wantKey: "a.gz"},
		{name: "no key", location: "s3://my-bucket/", wantErr: true},
		{name: "no bucket", location: "s3:///a.csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.location)
			require.NoError(t, err)
			bucket, key, err := bucketAndKey(u)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestHttpSource_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		// stall the body
		<-release
	}))
	defer server.Close()
	defer close(release)

	readTimeout := 100
	source := NewHttpSource(&FetchConfig{ReadTimeout: &readTimeout})
	defer source.Close()

	u, err := url.Parse(server.URL + "/slow")
	require.NoError(t, err)

	start := time.Now()
	_, err = source.Download(context.Background(), u, filepath.Join(t.TempDir(), "tempFile"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAwsLastResortRegionFromRegionWildcard(t *testing.T) {
	tests := map[string]string{
		"us-gov-*":  "us-gov-west-1",
		"cn*":       "cn-northwest-1",
		"us-west-2": "us-east-1",
		"*":         "us-east-1",
		"foo":       "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, awsLastResortRegionFromRegionWildcard(in))
		})
	}
}

func TestSourceFactory(t *testing.T) {
	for _, scheme := range []string{"http", "https", "s3", "gs"} {
		assert.True(t, Factory.Supports(scheme), scheme)
	}
	assert.False(t, Factory.Supports("ftp"))

	s, err := Factory.GetSource("s3", &FetchConfig{})
	require.NoError(t, err)
	assert.Equal(t, AwsS3BucketSourceIdentifier, s.Identifier())

	_, err = Factory.GetSource("ftp", &FetchConfig{})
	assert.Error(t, err)
}

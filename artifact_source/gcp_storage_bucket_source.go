package artifact_source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

const GcpStorageBucketSourceIdentifier = "gcp_storage_bucket"

// GcpStorageBucketSource downloads objects from gs://<bucket>/<object> locations
type GcpStorageBucketSource struct {
	connection *GcpConnection

	client    *storage.Client
	clientMut sync.Mutex
}

func NewGcpStorageBucketSource(cfg *FetchConfig) Source {
	conn := cfg.Gcp
	if conn == nil {
		conn = &GcpConnection{}
	}
	return &GcpStorageBucketSource{connection: conn}
}

func (s *GcpStorageBucketSource) Identifier() string {
	return GcpStorageBucketSourceIdentifier
}

func (s *GcpStorageBucketSource) Schemes() []string {
	return []string{"gs"}
}

func (s *GcpStorageBucketSource) Download(ctx context.Context, u *url.URL, localPath string) (int64, error) {
	bucket, object, err := bucketAndKey(u)
	if err != nil {
		return 0, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return 0, err
	}

	obj := client.Bucket(bucket).Object(object).Retryer(storage.WithPolicy(storage.RetryNever))
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get object reader: %w", err)
	}
	defer reader.Close()

	return writeFile(ctx, localPath, reader)
}

func (s *GcpStorageBucketSource) Close() error {
	s.clientMut.Lock()
	defer s.clientMut.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *GcpStorageBucketSource) getClient(ctx context.Context) (*storage.Client, error) {
	s.clientMut.Lock()
	defer s.clientMut.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	opts, err := s.connection.GetClientOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed setting GCP Storage client config: %w", err)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Storage client: %w", err)
	}
	s.client = client
	return client, nil
}

// bucketAndKey splits a <scheme>://<bucket>/<key> URL
func bucketAndKey(u *url.URL) (string, string, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid location '%s': expected %s://<bucket>/<key>", u.Redacted(), u.Scheme)
	}
	return bucket, key, nil
}

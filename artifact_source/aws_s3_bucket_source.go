package artifact_source

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const AwsS3BucketSourceIdentifier = "aws_s3_bucket"

// AwsS3BucketSource downloads objects from s3://<bucket>/<key> locations
type AwsS3BucketSource struct {
	connection     *AwsConnection
	connectTimeout time.Duration
	readTimeout    time.Duration

	client    *s3.Client
	clientMut sync.Mutex
}

func NewAwsS3BucketSource(cfg *FetchConfig) Source {
	conn := cfg.Aws
	if conn == nil {
		conn = &AwsConnection{}
	}
	return &AwsS3BucketSource{
		connection:     conn,
		connectTimeout: cfg.GetConnectTimeout(),
		readTimeout:    cfg.GetReadTimeout(),
	}
}

func (s *AwsS3BucketSource) Identifier() string {
	return AwsS3BucketSourceIdentifier
}

func (s *AwsS3BucketSource) Schemes() []string {
	return []string{"s3"}
}

func (s *AwsS3BucketSource) Download(ctx context.Context, u *url.URL, localPath string) (int64, error) {
	bucket, key, err := bucketAndKey(u)
	if err != nil {
		return 0, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return 0, err
	}

	getObjectOutput, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get object: %w", err)
	}
	defer getObjectOutput.Body.Close()

	return writeFile(ctx, localPath, getObjectOutput.Body)
}

func (s *AwsS3BucketSource) Close() error {
	return nil
}

func (s *AwsS3BucketSource) getClient(ctx context.Context) (*s3.Client, error) {
	s.clientMut.Lock()
	defer s.clientMut.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	cfg, err := s.connection.GetClientConfiguration(ctx, s.connectTimeout, s.readTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	endpoint := s.connection.GetEndpointUrl()
	s.client = s3.NewFromConfig(*cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if s.connection.S3ForcePathStyle != nil {
			o.UsePathStyle = *s.connection.S3ForcePathStyle
		}
	})
	return s.client, nil
}

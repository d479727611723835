package artifact_source

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	typehelpers "github.com/turbot/go-kit/types"
)

// AwsConnection is the `aws` block of the fetch config
type AwsConnection struct {
	Regions          []string `hcl:"regions,optional" yaml:"regions"`
	DefaultRegion    *string  `hcl:"default_region,optional" yaml:"defaultRegion"`
	Profile          *string  `hcl:"profile,optional" yaml:"profile"`
	AccessKey        *string  `hcl:"access_key,optional" yaml:"accessKey"`
	SecretKey        *string  `hcl:"secret_key,optional" yaml:"secretKey"`
	SessionToken     *string  `hcl:"session_token,optional" yaml:"sessionToken"`
	EndpointUrl      *string  `hcl:"endpoint_url,optional" yaml:"endpointUrl"`
	S3ForcePathStyle *bool    `hcl:"s3_force_path_style,optional" yaml:"s3ForcePathStyle"`
}

func (c *AwsConnection) Validate() error {
	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("access_key set without secret_key")
	}

	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("secret_key set without access_key")
	}

	return nil
}

func (c *AwsConnection) Identifier() string {
	return "aws"
}

// GetClientConfiguration loads the aws config for this connection
// the returned config makes a single attempt per request and dials through the shared DNS cache
func (c *AwsConnection) GetClientConfiguration(ctx context.Context, connectTimeout, readTimeout time.Duration) (*aws.Config, error) {
	var configOptions []func(*config.LoadOptions) error

	// profile
	if c.Profile != nil {
		configOptions = append(configOptions, config.WithSharedConfigProfile(typehelpers.SafeString(c.Profile)))
	}

	// access keys
	if c.AccessKey != nil && c.SecretKey != nil {
		provider := credentials.NewStaticCredentialsProvider(aws.ToString(c.AccessKey), aws.ToString(c.SecretKey), aws.ToString(c.SessionToken))
		configOptions = append(configOptions, config.WithCredentialsProvider(provider))
	}

	configOptions = append(configOptions, config.WithHTTPClient(newAwsHTTPClient(connectTimeout, readTimeout)))

	// no retries - a download is a single best-effort attempt
	configOptions = append(configOptions, config.WithRetryer(func() aws.Retryer {
		return aws.NopRetryer{}
	}))

	cfg, err := config.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	// if no region from base config, apply default region
	if cfg.Region == "" {
		cfg.Region = c.getDefaultRegion()
	}

	return &cfg, nil
}

// GetEndpointUrl returns the custom endpoint, from config or AWS_ENDPOINT_URL
func (c *AwsConnection) GetEndpointUrl() string {
	return getConfigOrEnv(c.EndpointUrl, "AWS_ENDPOINT_URL")
}

func (c *AwsConnection) getDefaultRegion() string {
	if c.DefaultRegion != nil {
		return *c.DefaultRegion
	}

	for _, r := range c.Regions {
		lastResort := awsLastResortRegionFromRegionWildcard(r)
		if lastResort != "" {
			return lastResort
		}
	}

	// ultimate fallback is to default to most common region
	return "us-east-1"
}

// helper function to get value from config or environment variable
func getConfigOrEnv(configValue *string, env string) string {
	if configValue != nil {
		return *configValue
	}

	return os.Getenv(env)
}

// newAwsHTTPClient builds an AWS buildable client using the default AWS settings
// apart from the dialer, which resolves through the shared DNS cache and applies the fetch timeouts
func newAwsHTTPClient(connectTimeout, readTimeout time.Duration) aws.HTTPClient {
	client := awshttp.NewBuildableClient().WithDialerOptions(func(d *net.Dialer) {
		d.Timeout = connectTimeout
	})

	// this is the maximum number of connections used for each host
	if maxConns := readEnvVarToInt("TAILPIPE_EXTRACTOR_AWS_HTTP_TRANSPORT_MAX_CONNS_PER_HOST", 0); maxConns > 0 {
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = maxConns
		})
	}

	dialer := client.GetDialer()
	return client.WithTransportOptions(func(tr *http.Transport) {
		tr.DialContext = cachedDialContext(dialer, readTimeout)
		tr.TLSHandshakeTimeout = connectTimeout
		tr.ResponseHeaderTimeout = readTimeout
	})
}

// Given a region (including wildcards), guess at the best last resort region
// based on the partition. Examples:
//
//	us-gov-* -> us-gov-west-1
//	cn* -> cn-northwest-1
//	us-west-2 -> us-east-1
//	* -> us-east-1
//	foo -> ""
func awsLastResortRegionFromRegionWildcard(regionWildcard string) string {
	// check prefixes for obscure partitions
	switch {
	case strings.HasPrefix(regionWildcard, "us-gov"):
		return "us-gov-west-1"
	case strings.HasPrefix(regionWildcard, "cn"):
		return "cn-northwest-1"
	case strings.HasPrefix(regionWildcard, "us-isob"):
		return "us-isob-east-1"
	case strings.HasPrefix(regionWildcard, "us-iso"):
		return "us-iso-east-1"
	case regionWildcard == "*":
		return "us-east-1"
	}

	// must be done after obscure partitions, because they have the same prefixes
	for _, prefix := range []string{"af", "ap", "ca", "eu", "me", "sa", "us"} {
		if strings.HasPrefix(regionWildcard, prefix) {
			return "us-east-1"
		}
	}

	// unknown partition
	return ""
}

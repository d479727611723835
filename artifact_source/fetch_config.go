package artifact_source

import (
	"fmt"
	"time"

	"github.com/turbot/tailpipe-extractor/constants"
)

// FetchConfig is the `fetch` block of the extractor config
type FetchConfig struct {
	// timeouts in milliseconds
	ConnectTimeout *int `hcl:"connect_timeout,optional" yaml:"connectTimeout"`
	ReadTimeout    *int `hcl:"read_timeout,optional" yaml:"readTimeout"`
	// maximum number of concurrent downloads across all extractors
	MaxConcurrency *int `hcl:"max_concurrency,optional" yaml:"maxConcurrency"`

	Aws *AwsConnection `hcl:"aws,block" yaml:"aws"`
	Gcp *GcpConnection `hcl:"gcp,block" yaml:"gcp"`
}

func (c *FetchConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.ConnectTimeout != nil && *c.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must not be negative")
	}
	if c.ReadTimeout != nil && *c.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must not be negative")
	}
	if c.MaxConcurrency != nil && *c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be greater than or equal to 1")
	}
	if c.Aws != nil {
		if err := c.Aws.Validate(); err != nil {
			return fmt.Errorf("invalid aws block: %w", err)
		}
	}
	if c.Gcp != nil {
		if err := c.Gcp.Validate(); err != nil {
			return fmt.Errorf("invalid gcp block: %w", err)
		}
	}
	return nil
}

func (c *FetchConfig) GetConnectTimeout() time.Duration {
	if c == nil || c.ConnectTimeout == nil {
		return constants.DefaultConnectTimeout
	}
	return time.Duration(*c.ConnectTimeout) * time.Millisecond
}

func (c *FetchConfig) GetReadTimeout() time.Duration {
	if c == nil || c.ReadTimeout == nil {
		return constants.DefaultReadTimeout
	}
	return time.Duration(*c.ReadTimeout) * time.Millisecond
}

func (c *FetchConfig) GetMaxConcurrency() int {
	if c == nil || c.MaxConcurrency == nil {
		return constants.DefaultMaxConcurrentDownloads
	}
	return *c.MaxConcurrency
}

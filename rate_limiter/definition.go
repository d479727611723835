package rate_limiter

import (
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// Definition describes how fast and how many downloads may run at once
type Definition struct {
	// the limiter name
	Name string
	// downloads per second, 0 for no rate limit
	FillRate   rate.Limit
	BucketSize int
	// the max number of concurrent downloads, 0 for no limit
	MaxConcurrency int64
}

func (d *Definition) String() string {
	var parts []string
	if d.FillRate > 0 {
		parts = append(parts, fmt.Sprintf("Limit(/s): %v, Burst: %d", d.FillRate, d.BucketSize))
	}
	if d.MaxConcurrency > 0 {
		parts = append(parts, fmt.Sprintf("MaxConcurrency: %d", d.MaxConcurrency))
	}
	return strings.Join(parts, " ")
}

func (d *Definition) Validate() []string {
	var validationErrors []string
	if d.Name == "" {
		validationErrors = append(validationErrors, "rate limiter definition must specify a name")
	}
	if d.FillRate < 0 || d.MaxConcurrency < 0 {
		validationErrors = append(validationErrors, "rate limiter definition must not have negative limits")
	}
	if d.FillRate > 0 && d.BucketSize <= 0 {
		validationErrors = append(validationErrors, "rate limiter definition with a fill rate must specify a bucket size")
	}

	return validationErrors
}

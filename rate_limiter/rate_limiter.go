package rate_limiter

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter bounds the downloads shared by all extractors using the same fetcher
type Limiter struct {
	Name string

	// underlying rate limiter
	limiter *rate.Limiter
	// semaphore to control concurrency
	sem *semaphore.Weighted
	def Definition
}

func NewLimiter(d *Definition) *Limiter {
	res := &Limiter{
		Name: d.Name,
		def:  *d,
	}
	if d.FillRate > 0 {
		res.limiter = rate.NewLimiter(d.FillRate, d.BucketSize)
	}
	if d.MaxConcurrency > 0 {
		res.sem = semaphore.NewWeighted(d.MaxConcurrency)
	}
	return res
}

func (l *Limiter) String() string {
	return fmt.Sprintf("%s %s", l.Name, l.def.String())
}

// Wait blocks until a download slot is available and the rate limit allows it
// every successful Wait must be followed by a Release
func (l *Limiter) Wait(ctx context.Context) error {
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			l.Release()
			return err
		}
	}
	return nil
}

func (l *Limiter) TryAcquire() bool {
	if l.sem == nil {
		return true
	}
	return l.sem.TryAcquire(1)
}

func (l *Limiter) Release() {
	if l.sem == nil {
		return
	}
	l.sem.Release(1)
}

// Package timing paces the host's control loop.
package timing

import (
	"context"
	"time"
)

// DefaultPollRate is how often interactive backends are polled.
const DefaultPollRate = 60

// Limiter controls how often the control loop polls its backend.
type Limiter interface {
	// Wait blocks until the next poll is due or ctx is done, in which case
	// it returns ctx's error.
	Wait(ctx context.Context) error

	// Stop releases the limiter's resources.
	Stop()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) Wait(ctx context.Context) error { return ctx.Err() }
func (noOpLimiter) Stop()                          {}

// PollInterval returns the interval between polls at rate polls per second.
func PollInterval(rate int) time.Duration {
	if rate <= 0 {
		rate = DefaultPollRate
	}
	return time.Second / time.Duration(rate)
}

// TickerLimiter uses time.Ticker for simple, consistent poll timing.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter(interval time.Duration) *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(interval)}
}

func (t *TickerLimiter) Wait(ctx context.Context) error {
	select {
	case <-t.ticker.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}

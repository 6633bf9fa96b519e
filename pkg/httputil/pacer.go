package httputil

import (
	"context"
	"sync"
	"time"
)

// IntervalPacer enforces a minimum gap between consecutive dispatches.
// The lock is held across the sleep and the timestamp update, so concurrent
// callers queue behind each other instead of computing the same deadline.
type IntervalPacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewIntervalPacer creates a pacer with the given minimum interval
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{
		interval: interval,
		now:      time.Now,
		sleep:    SleepContext,
	}
}

// WithClock replaces the time source and sleeper (tests)
func (p *IntervalPacer) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *IntervalPacer {
	p.now = now
	p.sleep = sleep
	return p
}

// Wait blocks until the interval since the previous dispatch has elapsed
func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		remaining := p.interval - p.now().Sub(p.last)
		if remaining > 0 {
			if err := p.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	p.last = p.now()
	return nil
}

// SleepContext sleeps for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

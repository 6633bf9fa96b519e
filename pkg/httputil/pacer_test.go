package httputil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock only moves when something sleeps on it
type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func TestIntervalPacer_FirstCallDoesNotWait(t *testing.T) {
	clock := newFakeClock()
	p := NewIntervalPacer(250*time.Millisecond).WithClock(clock.Now, clock.Sleep)

	require.NoError(t, p.Wait(context.Background()))
	assert.Empty(t, clock.sleeps)
}

func TestIntervalPacer_WaitsRemainder(t *testing.T) {
	clock := newFakeClock()
	p := NewIntervalPacer(250*time.Millisecond).WithClock(clock.Now, clock.Sleep)
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx))

	clock.Advance(100 * time.Millisecond)
	require.NoError(t, p.Wait(ctx))
	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 150*time.Millisecond, clock.sleeps[0])

	// enough time has passed, no sleep
	clock.Advance(time.Second)
	require.NoError(t, p.Wait(ctx))
	assert.Len(t, clock.sleeps, 1)
}

func TestIntervalPacer_ConcurrentCallersQueue(t *testing.T) {
	clock := newFakeClock()
	interval := 250 * time.Millisecond
	p := NewIntervalPacer(interval).WithClock(clock.Now, clock.Sleep)

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Wait(context.Background()))
		}()
	}
	wg.Wait()

	// every caller after the first waits one full interval
	require.Len(t, clock.sleeps, callers-1)
	for _, d := range clock.sleeps {
		assert.Equal(t, interval, d)
	}
}

func TestIntervalPacer_RealClockSpacing(t *testing.T) {
	interval := 20 * time.Millisecond
	p := NewIntervalPacer(interval)

	const callers = 5
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Wait(context.Background()))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), time.Duration(callers-1)*interval)
}

func TestIntervalPacer_ContextCancelled(t *testing.T) {
	p := NewIntervalPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), 0))
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}

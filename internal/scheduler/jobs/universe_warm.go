package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// DefaultUniverseWarmSchedule refreshes just inside the universe cache TTL
const DefaultUniverseWarmSchedule = "@every 55m"

// UniverseRefresher refetches the universe, bypassing any cached copy
type UniverseRefresher interface {
	RefreshUniverse(ctx context.Context) ([]contracts.Ticker, error)
}

// UniverseWarmJob keeps the ticker universe cached ahead of ranking requests
// ⭐ SSOT: universe warm-up schedule is owned by this job only
type UniverseWarmJob struct {
	provider contracts.MarketDataProvider
	schedule string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewUniverseWarmJob creates a new universe warm-up job. An empty schedule uses the default.
func NewUniverseWarmJob(provider contracts.MarketDataProvider, schedule string, log *logger.Logger) *UniverseWarmJob {
	if schedule == "" {
		schedule = DefaultUniverseWarmSchedule
	}
	return &UniverseWarmJob{
		provider: provider,
		schedule: schedule,
		timeout:  5 * time.Minute,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseWarmJob) Name() string {
	return "universe_warm"
}

// Schedule returns the cron schedule
func (j *UniverseWarmJob) Schedule() string {
	return j.schedule
}

// Run forces a universe refetch when the provider caches it, so the entry
// is replaced before it expires. Other providers are simply listed.
func (j *UniverseWarmJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	var (
		tickers []contracts.Ticker
		err     error
	)
	if r, ok := j.provider.(UniverseRefresher); ok {
		tickers, err = r.RefreshUniverse(ctx)
	} else {
		tickers, err = j.provider.ListTickers(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to warm universe: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers":  len(tickers),
		"duration": time.Since(start),
	}).Info("Universe cache warmed")

	return nil
}

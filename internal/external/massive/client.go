package massive

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/aktietipset/backend/internal/cache"
	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/config"
	"github.com/wonny/aktietipset/backend/pkg/httputil"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// Defaults for the Massive API
const (
	DefaultBaseURL           = "https://api.massive.com"
	DefaultRateLimitInterval = 250 * time.Millisecond
	DefaultTimeout           = 10 * time.Second
	DefaultMaxRetries        = 3
)

// Cache TTLs per entry kind
const (
	QuoteTTL        = 30 * time.Second
	FundamentalsTTL = 24 * time.Hour
	UniverseTTL     = time.Hour
)

// Options configures a Client
type Options struct {
	APIKey            string
	BaseURL           string
	RateLimitInterval time.Duration
	Timeout           time.Duration
	MaxRetries        int
}

// OptionsFromConfig maps the loaded config onto client options
func OptionsFromConfig(cfg config.MassiveConfig) Options {
	return Options{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		RateLimitInterval: cfg.RateLimitInterval,
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
	}
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.RateLimitInterval < 0 {
		o.RateLimitInterval = DefaultRateLimitInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	return o
}

// Client is the resilient Massive market data adapter.
// It paces, retries, caches and normalizes every upstream call.
// ⭐ SSOT: Massive API calls happen in this package only
type Client struct {
	http   *httputil.Client
	cache  *cache.TTLCache
	policy RetryPolicy
	logger *logger.Logger

	apiKey  string
	baseURL string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	releaseOnce sync.Once
}

var _ contracts.MarketDataProvider = (*Client)(nil)

// NewClient creates a new Massive API client.
// A missing API key is a configuration error.
func NewClient(opts Options, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("massive: api key is required: %w", contracts.ErrConfiguration)
	}
	opts = opts.withDefaults()

	pacer := httputil.NewIntervalPacer(opts.RateLimitInterval)
	policy := DefaultRetryPolicy(opts.RateLimitInterval)
	policy.MaxAttempts = opts.MaxRetries

	log = log.WithField("provider", "massive")

	return &Client{
		http:    httputil.NewWithTimeout(log, opts.Timeout).WithPacer(pacer),
		cache:   cache.New(),
		policy:  policy,
		logger:  log,
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		now:     time.Now,
		sleep:   httputil.SleepContext,
	}, nil
}

// NewClientFromConfig creates a client from the loaded config
func NewClientFromConfig(cfg *config.Config, log *logger.Logger) (*Client, error) {
	return NewClient(OptionsFromConfig(cfg.Massive), log)
}

// CacheStats returns the adapter cache counters
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// Release closes pooled connections and drops cached state. Idempotent.
func (c *Client) Release() error {
	c.releaseOnce.Do(func() {
		c.http.CloseIdleConnections()
		c.cache.Clear()
		c.logger.Info("Massive client released")
	})
	return nil
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

func fundamentalsKey(symbol string) string {
	return "fundamentals:" + symbol
}

const universeKey = "universe"

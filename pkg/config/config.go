package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and only here
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Upstream market data API
	Massive MassiveConfig

	// HTTP API
	API APIConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Scoring strategy YAML, empty for the built-in strategy
	StrategyFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// MassiveConfig holds Massive market data API configuration
type MassiveConfig struct {
	APIKey            string
	BaseURL           string
	RateLimitInterval time.Duration // minimum gap between outbound requests
	Timeout           time.Duration // per-request network timeout
	MaxRetries        int           // attempts per logical fetch
	Concurrency       int           // per-invocation symbol fan-out
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	CORSAllowOrigins []string
	RateLimitRPS     float64
	RateLimitBurst   int
	TrustedProxies   []string // IPs or CIDRs allowed to set X-Forwarded-For
}

// TrustedProxyPrefixes parses TrustedProxies. A bare IP is a single-address prefix.
func (a APIConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(a.TrustedProxies))
	for _, raw := range a.TrustedProxies {
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	Enabled              bool
	UniverseWarmSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Massive: MassiveConfig{
			APIKey:            getEnv("MASSIVE_API_KEY", ""),
			BaseURL:           getEnv("MASSIVE_BASE_URL", "https://api.massive.com"),
			RateLimitInterval: getEnvAsDuration("MASSIVE_RATE_LIMIT_INTERVAL", "250ms"),
			Timeout:           getEnvAsDuration("MASSIVE_TIMEOUT", "10s"),
			MaxRetries:        getEnvAsInt("MASSIVE_MAX_RETRIES", 3),
			Concurrency:       getEnvAsInt("MASSIVE_CONCURRENCY", 4),
		},

		API: APIConfig{
			CORSAllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", "http://localhost,http://localhost:5173"),
			RateLimitRPS:     getEnvAsFloat("API_RATE_LIMIT_RPS", 20),
			RateLimitBurst:   getEnvAsInt("API_RATE_LIMIT_BURST", 40),
			TrustedProxies:   getEnvAsList("API_TRUSTED_PROXIES", ""),
		},

		Scheduler: SchedulerConfig{
			Enabled:              getEnvAsBool("SCHEDULER_ENABLED", true),
			UniverseWarmSchedule: getEnv("UNIVERSE_WARM_SCHEDULE", "@every 55m"),
		},

		StrategyFile: getEnv("STRATEGY_CONFIG", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// HasProvider reports whether upstream credentials are configured
func (c *Config) HasProvider() bool {
	return c.Massive.APIKey != ""
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Massive.RateLimitInterval < 0 {
		return fmt.Errorf("MASSIVE_RATE_LIMIT_INTERVAL must not be negative")
	}

	if c.Massive.Timeout <= 0 {
		return fmt.Errorf("MASSIVE_TIMEOUT must be positive")
	}

	if c.Massive.MaxRetries < 1 {
		return fmt.Errorf("MASSIVE_MAX_RETRIES must be at least 1")
	}

	if c.Massive.Concurrency < 1 {
		return fmt.Errorf("MASSIVE_CONCURRENCY must be at least 1")
	}

	if c.API.RateLimitRPS <= 0 || c.API.RateLimitBurst < 1 {
		return fmt.Errorf("API_RATE_LIMIT_RPS and API_RATE_LIMIT_BURST must be positive")
	}

	if _, err := c.API.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("API_TRUSTED_PROXIES: %w", err)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

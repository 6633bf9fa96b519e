package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("MASSIVE_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	// Check defaults
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://api.massive.com", cfg.Massive.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Massive.RateLimitInterval)
	assert.Equal(t, 10*time.Second, cfg.Massive.Timeout)
	assert.Equal(t, 3, cfg.Massive.MaxRetries)
	assert.Equal(t, []string{"http://localhost", "http://localhost:5173"}, cfg.API.CORSAllowOrigins)
	assert.Empty(t, cfg.API.TrustedProxies)
	assert.False(t, cfg.HasProvider())
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("MASSIVE_API_KEY", "secret")
	t.Setenv("MASSIVE_RATE_LIMIT_INTERVAL", "1s")
	t.Setenv("MASSIVE_MAX_RETRIES", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STRATEGY_CONFIG", "config/strategy/default.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "secret", cfg.Massive.APIKey)
	assert.Equal(t, time.Second, cfg.Massive.RateLimitInterval)
	assert.Equal(t, 5, cfg.Massive.MaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.CORSAllowOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "config/strategy/default.yaml", cfg.StrategyFile)
	assert.True(t, cfg.HasProvider())
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestTrustedProxyPrefixes(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("API_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7")

	cfg, err := Load()
	require.NoError(t, err)

	prefixes, err := cfg.API.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.0.2.7/32", prefixes[1].String())

	t.Setenv("API_TRUSTED_PROXIES", "not-an-ip")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidateInvalidRetries(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("MASSIVE_MAX_RETRIES", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ")
	assert.Equal(t, []string{"a", "b"}, getEnvAsList("TEST_LIST", ""))
}

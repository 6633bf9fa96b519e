package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_Days(t *testing.T) {
	tests := []struct {
		period Period
		want   int
	}{
		{Period1M, 30},
		{Period3M, 90},
		{Period6M, 180},
		{Period1Y, 365},
		{Period3Y, 1095},
		{Period5Y, 1825},
		{Period10Y, 3650},
		{PeriodMax, 5475},
		{"2w", 365},
		{"", 365},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Days())
		})
	}
}

func TestPeriod_Range(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	from, to := Period1M.Range(now)

	assert.Equal(t, now, to)
	assert.Equal(t, time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC), from)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Period1Y, p)

	p, err = ParsePeriod(" 5Y ")
	require.NoError(t, err)
	assert.Equal(t, Period5Y, p)

	_, err = ParsePeriod("2w")
	assert.Error(t, err)
}

func TestPeriodOrDefault(t *testing.T) {
	assert.Equal(t, Period1Y, PeriodOrDefault(""))
	assert.Equal(t, Period6M, PeriodOrDefault(" 6M"))

	unknown := PeriodOrDefault("2W")
	assert.Equal(t, Period("2w"), unknown)
	assert.Equal(t, 365, unknown.Days())
}

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl "))
	assert.Equal(t, []string{"AAA", "BBB"}, NormalizeSymbols([]string{"aaa", " ", "Bbb"}))
}

func TestSignalForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Signal
	}{
		{100, SignalBuy},
		{70.0, SignalBuy},
		{69.999, SignalHold},
		{50, SignalHold},
		{45.001, SignalHold},
		{45.0, SignalSell},
		{0, SignalSell},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.3f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, SignalForScore(tt.score))
		})
	}
}

func TestParseRiskProfile(t *testing.T) {
	p, err := ParseRiskProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileBalanced, p)

	p, err = ParseRiskProfile("Aggressive")
	require.NoError(t, err)
	assert.Equal(t, ProfileAggressive, p)

	_, err = ParseRiskProfile("yolo")
	assert.Error(t, err)
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := fmt.Errorf("fetch quote: %w", &UpstreamError{
		Kind: ErrTransientUpstream,
		URL:  "https://api.example.com/v2/snapshot",
		Err:  cause,
	})

	assert.ErrorIs(t, err, ErrTransientUpstream)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrClientRequest)
	assert.Contains(t, err.Error(), "connection reset by peer")

	notFound := &UpstreamError{Kind: ErrClientRequest, StatusCode: 404}
	assert.True(t, IsNotFoundStatus(fmt.Errorf("wrap: %w", notFound)))
	assert.False(t, IsNotFoundStatus(&UpstreamError{Kind: ErrClientRequest, StatusCode: 403}))
	assert.False(t, IsNotFoundStatus(cause))
}

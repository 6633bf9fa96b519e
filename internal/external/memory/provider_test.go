package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aktietipset/backend/internal/contracts"
)

func TestProvider_ServesConfiguredData(t *testing.T) {
	p := New().
		WithTickers(contracts.Ticker{Symbol: "aaa"}, contracts.Ticker{Symbol: "BBB"}).
		WithQuote(contracts.Quote{Symbol: "aaa", Price: 10}).
		WithFundamentals("AAA", contracts.Fundamentals{PE: contracts.Float(12)})
	ctx := context.Background()

	tickers, err := p.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []contracts.Ticker{{Symbol: "AAA"}, {Symbol: "BBB"}}, tickers)

	q, err := p.GetQuote(ctx, "Aaa")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 10.0, q.Price)

	missing, err := p.GetQuote(ctx, "BBB")
	require.NoError(t, err)
	assert.Nil(t, missing)

	quotes, err := p.GetQuotes(ctx, []string{"bbb", "aaa"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	f, err := p.GetFundamentals(ctx, "aaa")
	require.NoError(t, err)
	assert.Equal(t, 12.0, *f.PE)

	history, err := p.GetHistory(ctx, "AAA", contracts.Period1Y)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)

	assert.Equal(t, 2, p.Calls(MethodGetQuote))
	assert.Equal(t, 1, p.Calls(MethodListTickers))
}

func TestProvider_InjectedError(t *testing.T) {
	boom := errors.New("boom")
	p := New().WithError(MethodGetHistory, boom)

	_, err := p.GetHistory(context.Background(), "AAA", contracts.Period1Y)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.Calls(MethodGetHistory))
}

func TestProvider_Release(t *testing.T) {
	p := New()
	require.NoError(t, p.Release())
	require.NoError(t, p.Release())
	assert.True(t, p.Released())
	assert.Equal(t, 2, p.Calls(MethodRelease))
}

func TestProvider_ClockFiltersPeriod(t *testing.T) {
	asOf := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	candles := []contracts.Candle{
		{Timestamp: asOf.AddDate(0, 0, -60), Close: 1},
		{Timestamp: asOf.AddDate(0, 0, -10), Close: 2},
		{Timestamp: asOf, Close: 3},
	}
	p := New().WithHistory("AAA", candles).WithClock(func() time.Time { return asOf })

	got, err := p.GetHistory(context.Background(), "AAA", contracts.Period1M)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Close)
}

func TestDemo(t *testing.T) {
	asOf := time.Date(2024, 6, 28, 15, 30, 0, 0, time.UTC)
	p := Demo(asOf)
	ctx := context.Background()

	tickers, err := p.ListTickers(ctx)
	require.NoError(t, err)
	require.Len(t, tickers, len(demoSymbols))

	for _, tk := range tickers {
		q, err := p.GetQuote(ctx, tk.Symbol)
		require.NoError(t, err)
		require.NotNil(t, q, tk.Symbol)
		assert.Greater(t, q.Price, 0.0)

		oneYear, err := p.GetHistory(ctx, tk.Symbol, contracts.Period1Y)
		require.NoError(t, err)
		assert.Greater(t, len(oneYear), 200)
		assert.Less(t, len(oneYear), 300)

		for i := 1; i < len(oneYear); i++ {
			assert.True(t, oneYear[i].Timestamp.After(oneYear[i-1].Timestamp))
		}
		assert.Equal(t, oneYear[len(oneYear)-1].Close, q.Price)
	}

	f, err := p.GetFundamentals(ctx, "RIVN")
	require.NoError(t, err)
	assert.Nil(t, f)

	// deterministic
	again := Demo(asOf)
	a, _ := p.GetHistory(ctx, "AAPL", contracts.PeriodMax)
	b, _ := again.GetHistory(ctx, "AAPL", contracts.PeriodMax)
	assert.Equal(t, a, b)
	assert.Len(t, a, demoDays)
}

package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/external/memory"
	"github.com/wonny/aktietipset/backend/internal/signals"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// trend builds n daily candles moving by step per day from start
func trend(n int, start, step float64) []contracts.Candle {
	day0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]contracts.Candle, n)
	for i := range candles {
		c := start + step*float64(i)
		candles[i] = contracts.Candle{Timestamp: day0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return candles
}

func newRanker(p contracts.MarketDataProvider) *Ranker {
	return NewRanker(p, signals.NewScorer(logger.Nop()), 2, logger.Nop())
}

// scenarioProvider holds one strong and one weak symbol
func scenarioProvider() *memory.Provider {
	return memory.New().
		WithTickers(
			contracts.Ticker{Symbol: "WEAK"},
			contracts.Ticker{Symbol: "STRONG"},
			contracts.Ticker{Symbol: "QUOTEONLY"},
		).
		WithQuote(contracts.Quote{Symbol: "WEAK", Price: 51, ChangePct: -8}).
		WithQuote(contracts.Quote{Symbol: "STRONG", Price: 250, ChangePct: 8}).
		WithQuote(contracts.Quote{Symbol: "QUOTEONLY", Price: 10}).
		WithHistory("STRONG", trend(250, 1, 1)).
		WithHistory("WEAK", trend(250, 300, -1)).
		WithFundamentals("STRONG", contracts.Fundamentals{
			PE:            contracts.Float(10),
			PS:            contracts.Float(2),
			ROE:           contracts.Float(20),
			Growth5Y:      contracts.Float(12),
			ProfitMargin:  contracts.Float(20),
			DebtToEquity:  contracts.Float(0.5),
			DividendYield: contracts.Float(3),
		}).
		WithFundamentals("WEAK", contracts.Fundamentals{
			PE:           contracts.Float(40),
			ROE:          contracts.Float(2),
			DebtToEquity: contracts.Float(2),
		})
}

func TestRanker_OrdersByScoreDescending(t *testing.T) {
	r := newRanker(scenarioProvider())

	got, err := r.Rank(context.Background(), contracts.RankingRequest{
		Symbols: []string{"weak", "strong"},
		Profile: contracts.ProfileBalanced,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "STRONG", got[0].Symbol)
	assert.InDelta(t, 80.75, got[0].Score, 1e-9)
	assert.Equal(t, contracts.SignalBuy, got[0].Signal)

	assert.Equal(t, "WEAK", got[1].Symbol)
	assert.Less(t, got[1].Score, 45.0)
	assert.Equal(t, contracts.SignalSell, got[1].Signal)

	for _, rec := range got {
		assert.Equal(t, contracts.ProfileBalanced, rec.Profile)
		assert.LessOrEqual(t, len(rec.Factors), contracts.MaxFactors)
	}
	assert.Equal(t, 250.0, got[0].Price)
	assert.Equal(t, 8.0, got[0].ChangePct)
}

func TestRanker_QuoteOnlyIsNeutral(t *testing.T) {
	r := newRanker(scenarioProvider())

	got, err := r.Rank(context.Background(), contracts.RankingRequest{Symbols: []string{"QUOTEONLY"}})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.InDelta(t, 50.0, got[0].Score, 1e-9)
	assert.Equal(t, contracts.SignalHold, got[0].Signal)
	assert.Equal(t, contracts.ProfileBalanced, got[0].Profile)
}

func TestRanker_UniverseHeadWhenNoSymbols(t *testing.T) {
	p := scenarioProvider()
	r := newRanker(p)

	got, err := r.Rank(context.Background(), contracts.RankingRequest{Limit: 2})
	require.NoError(t, err)

	symbols := make([]string, 0, len(got))
	for _, rec := range got {
		symbols = append(symbols, rec.Symbol)
	}
	assert.ElementsMatch(t, []string{"WEAK", "STRONG"}, symbols)
	assert.Equal(t, 1, p.Calls(memory.MethodListTickers))
}

func TestRanker_TruncatesRequestedSymbols(t *testing.T) {
	p := scenarioProvider()
	r := newRanker(p)

	got, err := r.Rank(context.Background(), contracts.RankingRequest{
		Symbols: []string{"QUOTEONLY", "STRONG", "WEAK"},
		Limit:   1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "QUOTEONLY", got[0].Symbol)
	assert.Equal(t, 0, p.Calls(memory.MethodListTickers))
}

func TestRanker_SkipsSymbolsWithoutQuote(t *testing.T) {
	p := scenarioProvider()
	r := newRanker(p)

	got, err := r.Rank(context.Background(), contracts.RankingRequest{Symbols: []string{"NOPE", "STRONG"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "STRONG", got[0].Symbol)
	assert.Equal(t, 1, p.Calls(memory.MethodGetFundamentals))
}

func TestRanker_TiesKeepRequestOrder(t *testing.T) {
	p := memory.New().
		WithQuote(contracts.Quote{Symbol: "BBB", Price: 1}).
		WithQuote(contracts.Quote{Symbol: "AAA", Price: 1}).
		WithQuote(contracts.Quote{Symbol: "CCC", Price: 1})
	r := newRanker(p)

	got, err := r.Rank(context.Background(), contracts.RankingRequest{Symbols: []string{"CCC", "AAA", "BBB"}})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "CCC", got[0].Symbol)
	assert.Equal(t, "AAA", got[1].Symbol)
	assert.Equal(t, "BBB", got[2].Symbol)
}

func TestRanker_ProviderErrorsFail(t *testing.T) {
	boom := &contracts.UpstreamError{Kind: contracts.ErrTransientUpstream, StatusCode: 503}

	for _, method := range []string{
		memory.MethodGetQuotes,
		memory.MethodGetFundamentals,
		memory.MethodGetHistory,
	} {
		t.Run(method, func(t *testing.T) {
			r := newRanker(scenarioProvider().WithError(method, boom))

			got, err := r.Rank(context.Background(), contracts.RankingRequest{Symbols: []string{"STRONG"}})
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, contracts.ErrTransientUpstream))
		})
	}

	t.Run(memory.MethodListTickers, func(t *testing.T) {
		r := newRanker(scenarioProvider().WithError(memory.MethodListTickers, boom))
		_, err := r.Rank(context.Background(), contracts.RankingRequest{})
		assert.ErrorIs(t, err, contracts.ErrTransientUpstream)
	})
}

func TestRanker_EmptyUniverse(t *testing.T) {
	r := newRanker(memory.New())

	got, err := r.Rank(context.Background(), contracts.RankingRequest{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

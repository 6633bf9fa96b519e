package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/signals"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// Alignment controls how per-symbol series are combined into the portfolio
type Alignment string

const (
	// AlignByDate joins series on the union of candle dates, carries each
	// series forward over its gaps and fills leading gaps with zero
	AlignByDate Alignment = "date"
	// AlignByPosition joins the i-th value of every series, carrying
	// shorter series forward at their last value
	AlignByPosition Alignment = "position"
)

// ParseAlignment parses an alignment name, defaulting empty input to by-date
func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(s) {
	case "", AlignByDate:
		return AlignByDate, nil
	case AlignByPosition:
		return AlignByPosition, nil
	default:
		return "", fmt.Errorf("unknown alignment %q", s)
	}
}

// Config holds backtest engine configuration
type Config struct {
	Alignment   Alignment
	Concurrency int // parallel history fetches
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Alignment:   AlignByDate,
		Concurrency: 4,
	}
}

// Engine runs equal-weight buy-and-hold backtests
// ⭐ SSOT: backtest math is computed here only
type Engine struct {
	provider contracts.MarketDataProvider
	config   Config
	logger   *logger.Logger
}

// NewEngine creates a new backtest engine
func NewEngine(provider contracts.MarketDataProvider, config Config, log *logger.Logger) *Engine {
	defaults := DefaultConfig()
	if config.Alignment == "" {
		config.Alignment = defaults.Alignment
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	return &Engine{
		provider: provider,
		config:   config,
		logger:   log,
	}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.config
}

// series is one symbol's cumulative return curve
type series struct {
	symbol     string
	timestamps []time.Time
	cumulative []float64
}

// Run executes a backtest. Symbols without at least two closes are skipped;
// when none remain the result is empty and no error is returned.
func (e *Engine) Run(ctx context.Context, req contracts.BacktestRequest) (*contracts.BacktestResult, error) {
	period := req.Period
	if period == "" {
		period = contracts.Period1Y
	}
	profile := req.Profile
	if profile == "" {
		profile = contracts.ProfileBalanced
	}
	symbols := contracts.NormalizeSymbols(req.Symbols)

	e.logger.WithFields(map[string]interface{}{
		"symbols":   len(symbols),
		"period":    period,
		"alignment": e.config.Alignment,
	}).Info("Starting backtest")

	histories, err := e.fetchHistories(ctx, symbols, period)
	if err != nil {
		return nil, err
	}

	result := &contracts.BacktestResult{
		Profile:     profile,
		Period:      period,
		Symbols:     []contracts.SymbolBacktestResult{},
		EquityCurve: []contracts.EquityPoint{},
		Metrics:     map[string]float64{},
	}

	curves := make([]series, 0, len(symbols))
	for i, symbol := range symbols {
		candles := signals.SortCandles(histories[i])
		timestamps, returns := dailyReturns(candles)
		if len(returns) == 0 {
			e.logger.WithFields(map[string]interface{}{
				"symbol":  symbol,
				"candles": len(candles),
			}).Debug("No returns for symbol, skipping")
			continue
		}

		cum := Cumulative(returns)
		curves = append(curves, series{symbol: symbol, timestamps: timestamps, cumulative: cum})
		result.Symbols = append(result.Symbols, contracts.SymbolBacktestResult{
			Symbol:      symbol,
			CAGR:        CAGR(cum),
			Sharpe:      Sharpe(returns),
			MaxDrawdown: MaxDrawdown(returns),
		})
	}

	if len(curves) == 0 {
		e.logger.Info("Backtest completed with no usable symbols")
		return result, nil
	}

	var timestamps []time.Time
	var portfolio []float64
	switch e.config.Alignment {
	case AlignByPosition:
		timestamps, portfolio = alignByPosition(curves)
	default:
		timestamps, portfolio = alignByDate(curves)
	}

	equity := make([]float64, len(portfolio))
	growth := 1.0
	for i, r := range portfolio {
		growth *= 1 + r
		equity[i] = growth
		result.EquityCurve = append(result.EquityCurve, contracts.EquityPoint{
			Timestamp: timestamps[i],
			Value:     growth,
		})
	}

	total := make([]float64, len(equity))
	for i, v := range equity {
		total[i] = v - 1
	}
	result.Metrics[contracts.MetricCAGR] = CAGR(total)
	result.Metrics[contracts.MetricSharpe] = Sharpe(portfolio)
	result.Metrics[contracts.MetricMaxDrawdown] = MaxDrawdown(portfolio)

	e.logger.WithFields(map[string]interface{}{
		"symbols":      len(result.Symbols),
		"points":       len(result.EquityCurve),
		"cagr":         fmt.Sprintf("%.2f%%", result.Metrics[contracts.MetricCAGR]*100),
		"sharpe_ratio": fmt.Sprintf("%.2f", result.Metrics[contracts.MetricSharpe]),
		"max_drawdown": fmt.Sprintf("%.2f%%", result.Metrics[contracts.MetricMaxDrawdown]*100),
	}).Info("Backtest completed")

	return result, nil
}

// fetchHistories loads every symbol's history, results in input order
func (e *Engine) fetchHistories(ctx context.Context, symbols []string, period contracts.Period) ([][]contracts.Candle, error) {
	histories := make([][]contracts.Candle, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			candles, err := e.provider.GetHistory(gctx, symbol, period)
			if err != nil {
				return fmt.Errorf("failed to get history for %s: %w", symbol, err)
			}
			histories[i] = candles
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return histories, nil
}

// dailyReturns computes fractional returns between consecutive closes and
// pairs each with the timestamp of the candle that closes it. Pairs whose
// previous close is zero are dropped.
func dailyReturns(candles []contracts.Candle) ([]time.Time, []float64) {
	timestamps := make([]time.Time, 0, len(candles))
	returns := make([]float64, 0, len(candles))
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		timestamps = append(timestamps, candles[i].Timestamp)
		returns = append(returns, candles[i].Close/prev-1)
	}
	return timestamps, returns
}

// alignByDate averages series over the union of their timestamps
func alignByDate(curves []series) ([]time.Time, []float64) {
	index := make(map[int64]time.Time)
	for _, s := range curves {
		for _, ts := range s.timestamps {
			index[ts.UnixNano()] = ts
		}
	}

	keys := make([]int64, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	sums := make([]float64, len(keys))
	for _, s := range curves {
		values := make(map[int64]float64, len(s.timestamps))
		for i, ts := range s.timestamps {
			values[ts.UnixNano()] = s.cumulative[i] // last wins on duplicates
		}

		last, seen := 0.0, false
		for row, k := range keys {
			if v, ok := values[k]; ok {
				last, seen = v, true
			}
			if seen {
				sums[row] += last
			}
		}
	}

	timestamps := make([]time.Time, len(keys))
	mean := make([]float64, len(keys))
	for row, k := range keys {
		timestamps[row] = index[k]
		mean[row] = sums[row] / float64(len(curves))
	}
	return timestamps, mean
}

// alignByPosition averages the i-th value of every series. Timestamps come
// from the longest series, first in input order on ties.
func alignByPosition(curves []series) ([]time.Time, []float64) {
	longest := curves[0]
	for _, s := range curves[1:] {
		if len(s.cumulative) > len(longest.cumulative) {
			longest = s
		}
	}

	n := len(longest.cumulative)
	mean := make([]float64, n)
	for row := 0; row < n; row++ {
		var sum float64
		for _, s := range curves {
			i := min(row, len(s.cumulative)-1)
			sum += s.cumulative[i]
		}
		mean[row] = sum / float64(len(curves))
	}

	timestamps := append([]time.Time(nil), longest.timestamps...)
	return timestamps, mean
}

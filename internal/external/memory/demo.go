package memory

import (
	"math"
	"time"

	"github.com/wonny/aktietipset/backend/internal/contracts"
)

type demoSymbol struct {
	ticker contracts.Ticker
	start  float64
	drift  float64 // daily log drift
	swing  float64 // amplitude of the cyclical component
	period float64 // cycle length in trading days
	change float64
	volume int64
	f      contracts.Fundamentals
}

var demoSymbols = []demoSymbol{
	{
		ticker: contracts.Ticker{Symbol: "AAPL", Name: "Apple Inc.", Market: "stocks", Exchange: "XNAS", Currency: "USD"},
		start:  130, drift: 0.0006, swing: 0.04, period: 63, change: 0.8, volume: 52_000_000,
		f: contracts.Fundamentals{PE: contracts.Float(29), PS: contracts.Float(7.5), ROE: contracts.Float(150), DebtToEquity: contracts.Float(1.8),
			Growth5Y: contracts.Float(11), ProfitMargin: contracts.Float(25), Beta: contracts.Float(1.2), DividendYield: contracts.Float(0.5)},
	},
	{
		ticker: contracts.Ticker{Symbol: "MSFT", Name: "Microsoft Corporation", Market: "stocks", Exchange: "XNAS", Currency: "USD"},
		start:  240, drift: 0.0007, swing: 0.03, period: 80, change: 0.4, volume: 21_000_000,
		f: contracts.Fundamentals{PE: contracts.Float(33), PS: contracts.Float(12), ROE: contracts.Float(38), DebtToEquity: contracts.Float(0.4),
			Growth5Y: contracts.Float(14), ProfitMargin: contracts.Float(36), Beta: contracts.Float(0.9), DividendYield: contracts.Float(0.8)},
	},
	{
		ticker: contracts.Ticker{Symbol: "KO", Name: "The Coca-Cola Company", Market: "stocks", Exchange: "XNYS", Currency: "USD"},
		start:  58, drift: 0.0001, swing: 0.02, period: 120, change: -0.2, volume: 12_000_000,
		f: contracts.Fundamentals{PE: contracts.Float(24), PS: contracts.Float(6), ROE: contracts.Float(40), DebtToEquity: contracts.Float(1.6),
			Growth5Y: contracts.Float(4), ProfitMargin: contracts.Float(23), Beta: contracts.Float(0.6), DividendYield: contracts.Float(3.1)},
	},
	{
		ticker: contracts.Ticker{Symbol: "XOM", Name: "Exxon Mobil Corporation", Market: "stocks", Exchange: "XNYS", Currency: "USD"},
		start:  95, drift: 0.0002, swing: 0.06, period: 90, change: -1.1, volume: 17_000_000,
		f: contracts.Fundamentals{PE: contracts.Float(12), PS: contracts.Float(1.3), ROE: contracts.Float(17), DebtToEquity: contracts.Float(0.2),
			Growth5Y: contracts.Float(6), ProfitMargin: contracts.Float(10), Beta: contracts.Float(0.9), DividendYield: contracts.Float(3.4)},
	},
	{
		ticker: contracts.Ticker{Symbol: "TSLA", Name: "Tesla, Inc.", Market: "stocks", Exchange: "XNAS", Currency: "USD"},
		start:  200, drift: 0.0003, swing: 0.18, period: 45, change: 3.6, volume: 95_000_000,
		f: contracts.Fundamentals{PE: contracts.Float(60), PS: contracts.Float(8), ROE: contracts.Float(20), DebtToEquity: contracts.Float(0.1),
			Growth5Y: contracts.Float(45), ProfitMargin: contracts.Float(11), Beta: contracts.Float(2.0)},
	},
	{
		// no fundamentals on file
		ticker: contracts.Ticker{Symbol: "RIVN", Name: "Rivian Automotive, Inc.", Market: "stocks", Exchange: "XNAS", Currency: "USD"},
		start:  25, drift: -0.0008, swing: 0.12, period: 30, change: -4.2, volume: 30_000_000,
	},
}

// demoDays is roughly five years of trading days
const demoDays = 1260

// Demo returns a provider seeded with a small deterministic universe.
// Histories end at asOf and the provider clock is pinned to it.
func Demo(asOf time.Time) *Provider {
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	days := tradingDays(asOf, demoDays)

	p := New().WithClock(func() time.Time { return asOf })
	for _, s := range demoSymbols {
		candles := synthesize(s, days)

		p.WithTickers(s.ticker)
		p.WithHistory(s.ticker.Symbol, candles)
		p.WithQuote(contracts.Quote{
			Symbol:    s.ticker.Symbol,
			Price:     candles[len(candles)-1].Close,
			ChangePct: s.change,
			Volume:    s.volume,
			Currency:  s.ticker.Currency,
		})
		if s.f != (contracts.Fundamentals{}) {
			p.WithFundamentals(s.ticker.Symbol, s.f)
		}
	}
	return p
}

// tradingDays returns n weekdays ending at asOf, oldest first
func tradingDays(asOf time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for d := asOf; len(days) < n; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days
}

// synthesize builds a smooth drifting series with a cyclical component
func synthesize(s demoSymbol, days []time.Time) []contracts.Candle {
	candles := make([]contracts.Candle, 0, len(days))
	prevClose := s.start

	for i, day := range days {
		x := float64(i)
		level := s.start * math.Exp(s.drift*x) * (1 + s.swing*math.Sin(2*math.Pi*x/s.period))
		wiggle := 0.004 * math.Sin(x*1.7) // intraday range proxy

		open := prevClose
		closePrice := level
		high := math.Max(open, closePrice) * (1 + 0.006 + math.Abs(wiggle))
		low := math.Min(open, closePrice) * (1 - 0.006 - math.Abs(wiggle))

		candles = append(candles, contracts.Candle{
			Timestamp: day,
			Open:      round2(open),
			High:      round2(high),
			Low:       round2(low),
			Close:     round2(closePrice),
			Volume:    float64(s.volume) * (1 + 0.3*math.Sin(x/5)),
		})
		prevClose = closePrice
	}
	return candles
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

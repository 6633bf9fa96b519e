package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Ticker is reference data for one tradable symbol
type Ticker struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Market   string `json:"market,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Quote is the latest price snapshot for a symbol
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Currency  string  `json:"currency,omitempty"`
}

// Candle is one daily OHLCV bar
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Fundamentals is a snapshot of valuation and quality ratios.
// A nil field means the upstream did not report it, which is not the same as zero.
type Fundamentals struct {
	PE            *float64 `json:"pe"`
	PS            *float64 `json:"ps"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	Growth5Y      *float64 `json:"growth_5y"`
	ProfitMargin  *float64 `json:"profit_margin"`
	Beta          *float64 `json:"beta"`
	DividendYield *float64 `json:"dividend_yield"`
}

// SnapshotEntry bundles everything the scorers need for one symbol
type SnapshotEntry struct {
	Quote        Quote
	Fundamentals *Fundamentals
	History      []Candle
}

// Float returns a pointer to v, for building Fundamentals literals
func Float(v float64) *float64 {
	return &v
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
// ⭐ SSOT: symbols are compared and cached in this form only
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeSymbols normalizes every symbol, dropping blanks
func NormalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if n := NormalizeSymbol(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Period is a history window label such as "1y"
type Period string

// Supported history periods
const (
	Period1M  Period = "1m"
	Period3M  Period = "3m"
	Period6M  Period = "6m"
	Period1Y  Period = "1y"
	Period3Y  Period = "3y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodMax Period = "max"
)

var periodDays = map[Period]int{
	Period1M:  30,
	Period3M:  90,
	Period6M:  180,
	Period1Y:  365,
	Period3Y:  365 * 3,
	Period5Y:  365 * 5,
	Period10Y: 365 * 10,
	PeriodMax: 365 * 15,
}

// ParsePeriod parses a period label, defaulting empty input to one year
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return Period1Y, nil
	}
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// PeriodOrDefault normalizes a label without rejecting unknown values.
// Empty input is one year; unknown labels keep their text and resolve to
// one year through Days.
func PeriodOrDefault(s string) Period {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return Period1Y
	}
	return p
}

// Days returns the calendar-day window for the period.
// Unknown labels fall back to one year.
func (p Period) Days() int {
	if days, ok := periodDays[p]; ok {
		return days
	}
	return periodDays[Period1Y]
}

// Range returns the [from, to] window ending at now, in UTC
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	to := now.UTC()
	return to.AddDate(0, 0, -p.Days()), to
}

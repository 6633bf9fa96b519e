package backtest

import (
	"math"
)

// Annualization constants
const (
	TradingDays  = 252
	RiskFreeRate = 0.005 // annual
)

// Cumulative returns cum[i] = prod(1+r[0..i]) - 1
func Cumulative(returns []float64) []float64 {
	cum := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		growth *= 1 + r
		cum[i] = growth - 1
	}
	return cum
}

// CAGR annualizes the last value of a cumulative return series.
// Zero when the series has at most one point or the result is undefined.
func CAGR(cumulative []float64) float64 {
	n := len(cumulative)
	if n <= 1 {
		return 0
	}

	v := math.Pow(1+cumulative[n-1], float64(TradingDays)/float64(n)) - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Sharpe is the annualized mean excess return over its sample standard
// deviation. Zero when the deviation is zero or undefined.
func Sharpe(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	daily := RiskFreeRate / TradingDays
	var mean float64
	for _, r := range returns {
		mean += r - daily
	}
	mean /= float64(n)

	var ss float64
	for _, r := range returns {
		d := r - daily - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n-1))
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean * TradingDays / std
}

// MaxDrawdown returns the deepest peak-to-trough decline of the growth
// curve prod(1+r), as a non-positive fraction. Zero when empty.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	growth := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, r := range returns {
		growth *= 1 + r
		peak = math.Max(peak, growth)
		if dd := growth/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

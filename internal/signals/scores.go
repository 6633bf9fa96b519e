package signals

import (
	"github.com/wonny/aktietipset/backend/internal/contracts"
)

// Neutral is the baseline every sub-score starts from
const Neutral = 50.0

// Factor explanations
const (
	FactorNoHistory      = "No price history, neutral score"
	FactorAboveMA20      = "Price above MA20"
	FactorAboveMA50      = "Price above MA50"
	FactorAboveMA200     = "Price above MA200"
	FactorOversold       = "RSI < 30 (oversold)"
	FactorOverbought     = "RSI > 70 (overbought)"
	FactorNoFundamentals = "No fundamentals, neutral score"
	FactorLowPE          = "P/E below 15"
	FactorLowPS          = "P/S below 3"
	FactorHighROE        = "ROE above 15%"
	FactorGrowth         = "Growth >10% (5y)"
	FactorStrongMargin   = "Strong margin"
	FactorHighLeverage   = "High leverage"
	FactorDividend       = "Dividend ≥3%"
	FactorLowATR         = "Low ATR (%)"
	FactorHighATR        = "High ATR (%)"
	FactorLowBeta        = "Beta < 1"
	FactorHighBeta       = "Beta > 1.3"
)

// SubScore is one clamped factor score with its explanations
type SubScore struct {
	Value   float64  `json:"value"`
	Factors []string `json:"factors"`
}

func newSubScore(value float64, factors []string) SubScore {
	if factors == nil {
		factors = []string{}
	}
	return SubScore{Value: Clamp(value, 0, 100), Factors: factors}
}

// ScoreTechnical scores trend and momentum from candles sorted oldest first
func ScoreTechnical(quote contracts.Quote, candles []contracts.Candle) SubScore {
	if len(candles) == 0 {
		return newSubScore(Neutral, []string{FactorNoHistory})
	}

	closes := Closes(candles)
	latest := closes[len(closes)-1]

	score := Neutral
	var factors []string

	for _, ma := range []struct {
		window int
		factor string
	}{
		{WindowMA20, FactorAboveMA20},
		{WindowMA50, FactorAboveMA50},
		{WindowMA200, FactorAboveMA200},
	} {
		if avg, ok := SMA(closes, ma.window); ok && latest > avg {
			score += 10
			factors = append(factors, ma.factor)
		}
	}

	if rsi, ok := RSI(closes, WindowRSI); ok {
		switch {
		case rsi < 30:
			score += 5
			factors = append(factors, FactorOversold)
		case rsi > 70:
			score -= 10
			factors = append(factors, FactorOverbought)
		}
	}

	score += Clamp(quote.ChangePct, -5, 5)

	return newSubScore(score, truncate(factors, contracts.MaxFactors))
}

// ScoreFundamental scores valuation and quality ratios.
// Rules whose input is unknown are skipped.
func ScoreFundamental(f *contracts.Fundamentals) SubScore {
	if f == nil {
		return newSubScore(Neutral, []string{FactorNoFundamentals})
	}

	score := Neutral
	var factors []string

	if f.PE != nil {
		switch {
		case *f.PE < 15:
			score += 10
			factors = append(factors, FactorLowPE)
		case *f.PE > 30:
			score -= 5
		}
	}

	if f.PS != nil && *f.PS < 3 {
		score += 5
		factors = append(factors, FactorLowPS)
	}

	if f.ROE != nil {
		switch {
		case *f.ROE > 15:
			score += 10
			factors = append(factors, FactorHighROE)
		case *f.ROE < 5:
			score -= 5
		}
	}

	if f.Growth5Y != nil && *f.Growth5Y > 10 {
		score += 10
		factors = append(factors, FactorGrowth)
	}

	if f.ProfitMargin != nil && *f.ProfitMargin > 15 {
		score += 5
		factors = append(factors, FactorStrongMargin)
	}

	if f.DebtToEquity != nil && *f.DebtToEquity > 1 {
		score -= 10
		factors = append(factors, FactorHighLeverage)
	}

	if f.DividendYield != nil && *f.DividendYield >= 3 {
		score += 5
		factors = append(factors, FactorDividend)
	}

	return newSubScore(score, factors)
}

// ScoreRisk scores volatility and market sensitivity, perturbed by profile
func ScoreRisk(f *contracts.Fundamentals, candles []contracts.Candle, profile contracts.RiskProfile) SubScore {
	score := Neutral
	var factors []string

	atrPct, hasATR := ATRPercent(candles, WindowATR)
	if hasATR {
		switch {
		case atrPct < 2.5:
			score += 10
			factors = append(factors, FactorLowATR)
		case atrPct > 5:
			score -= 10
			factors = append(factors, FactorHighATR)
		}
	}

	if f != nil && f.Beta != nil {
		beta := *f.Beta
		switch {
		case beta < 1:
			score += 5
			factors = append(factors, FactorLowBeta)
		case beta > 1.3:
			score -= 5
			factors = append(factors, FactorHighBeta)
		}

		switch {
		case profile == contracts.ProfileConservative && beta > 1:
			score -= 5
		case profile == contracts.ProfileAggressive && beta > 1.2:
			score += 5
		}
	}

	if hasATR {
		switch {
		case profile == contracts.ProfileConservative && atrPct > 4:
			score -= 5
		case profile == contracts.ProfileAggressive && atrPct < 2:
			score -= 5
		}
	}

	return newSubScore(score, factors)
}

func truncate(factors []string, n int) []string {
	if len(factors) > n {
		return factors[:n]
	}
	return factors
}

package signals

import (
	"math"
	"sort"

	"github.com/wonny/aktietipset/backend/internal/contracts"
)

// Indicator windows
const (
	WindowMA20  = 20
	WindowMA50  = 50
	WindowMA200 = 200
	WindowRSI   = 14
	WindowATR   = 14
)

// SortCandles returns a copy of candles ordered by timestamp
func SortCandles(candles []contracts.Candle) []contracts.Candle {
	sorted := append([]contracts.Candle(nil), candles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Closes extracts close prices in order
func Closes(candles []contracts.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// SMA returns the simple moving average of the last window values.
// ok is false when fewer than window values exist.
func SMA(values []float64, window int) (float64, bool) {
	if window <= 0 || len(values) < window {
		return 0, false
	}

	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), true
}

// RSI returns the latest relative strength index using simple averages
// of gains and losses over window deltas. The first value has no delta
// and contributes zero movement, so window closes are enough.
// ok is false when the window is short or there was no movement at all.
func RSI(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window {
		return 0, false
	}

	var gains, losses float64
	for i := len(closes) - window; i < len(closes); i++ {
		if i == 0 {
			continue
		}
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(window)
	avgLoss := losses / float64(window)

	switch {
	case avgLoss == 0 && avgGain == 0:
		return 0, false
	case avgLoss == 0:
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// TrueRange returns the true range of candle i. The first candle has no
// previous close and uses high minus low.
func TrueRange(candles []contracts.Candle, i int) float64 {
	c := candles[i]
	tr := c.High - c.Low
	if i == 0 {
		return tr
	}

	prev := candles[i-1].Close
	return math.Max(tr, math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))
}

// ATR returns the average true range of the last window candles
func ATR(candles []contracts.Candle, window int) (float64, bool) {
	if window <= 0 || len(candles) < window {
		return 0, false
	}

	var sum float64
	for i := len(candles) - window; i < len(candles); i++ {
		sum += TrueRange(candles, i)
	}
	return sum / float64(window), true
}

// ATRPercent returns ATR as a percentage of the latest close
func ATRPercent(candles []contracts.Candle, window int) (float64, bool) {
	atr, ok := ATR(candles, window)
	if !ok {
		return 0, false
	}

	last := candles[len(candles)-1].Close
	if last == 0 {
		return 0, false
	}
	return atr / last * 100, true
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

package massive

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TickerReference is one entry of the reference tickers listing
type TickerReference struct {
	Ticker          string `json:"ticker"`
	Name            string `json:"name"`
	Market          string `json:"market"`
	Locale          string `json:"locale"`
	PrimaryExchange string `json:"primary_exchange"`
	Type            string `json:"type"`
	Active          *bool  `json:"active"`
	CurrencyName    string `json:"currency_name"`
}

// TickerListResponse is one page of the reference tickers listing
type TickerListResponse struct {
	Results []TickerReference `json:"results"`
	NextURL string            `json:"next_url"`
}

// SnapshotResponse wraps a single-ticker snapshot
type SnapshotResponse struct {
	Ticker *SnapshotTicker `json:"ticker"`
}

// SnapshotTicker is the latest trade/day aggregate for one symbol
type SnapshotTicker struct {
	Ticker           string        `json:"ticker"`
	TodaysChangePerc *float64      `json:"todaysChangePerc"`
	Day              *SnapshotBar  `json:"day"`
	LastTrade        *SnapshotLast `json:"lastTrade"`
}

// SnapshotBar is the current day aggregate
type SnapshotBar struct {
	O *float64 `json:"o"`
	H *float64 `json:"h"`
	L *float64 `json:"l"`
	C *float64 `json:"c"`
	V *float64 `json:"v"`
}

// SnapshotLast is the most recent trade
type SnapshotLast struct {
	P *float64 `json:"p"`
	S *float64 `json:"s"`
}

// AggsResponse holds OHLCV bars for a date range
type AggsResponse struct {
	Ticker       string      `json:"ticker"`
	ResultsCount int         `json:"resultsCount"`
	Results      []AggRecord `json:"results"`
}

// AggRecord is one OHLCV bar. T is the bar start as epoch seconds.
type AggRecord struct {
	T int64    `json:"t"`
	O *float64 `json:"o"`
	H *float64 `json:"h"`
	L *float64 `json:"l"`
	C *float64 `json:"c"`
	V *float64 `json:"v"`
}

// FinancialsResponse holds the most recent filing
type FinancialsResponse struct {
	Results []FinancialRecord `json:"results"`
}

// FinancialRecord carries loosely typed metric and ratio maps
type FinancialRecord struct {
	Metrics map[string]json.RawMessage `json:"metrics"`
	Ratios  map[string]json.RawMessage `json:"ratios"`
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds
const epochMillisThreshold = 100_000_000_000

// barTime converts a bar timestamp to UTC with second precision
func barTime(t int64) time.Time {
	if t >= epochMillisThreshold {
		return time.Unix(t/1000, 0).UTC()
	}
	return time.Unix(t, 0).UTC()
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// pickRatio resolves key from metrics first, then ratios.
// Only JSON numbers and numeric strings are accepted.
func pickRatio(metrics, ratios map[string]json.RawMessage, key string) *float64 {
	raw, ok := metrics[key]
	if !ok || isJSONNull(raw) {
		raw, ok = ratios[key]
	}
	if !ok || isJSONNull(raw) {
		return nil
	}
	return coerceFloat(raw)
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func coerceFloat(raw json.RawMessage) *float64 {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}

	return nil
}

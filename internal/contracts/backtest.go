package contracts

import "time"

// BacktestRequest is the input to the backtesting engine
type BacktestRequest struct {
	Symbols []string
	Period  Period
	Profile RiskProfile // carried through to the result, not used in the math
}

// SymbolBacktestResult holds per-symbol performance metrics
type SymbolBacktestResult struct {
	Symbol      string  `json:"symbol"`
	CAGR        float64 `json:"cagr"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// EquityPoint is one point of the portfolio equity curve (1.0 = start)
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Portfolio metric keys
const (
	MetricCAGR        = "cagr"
	MetricSharpe      = "sharpe"
	MetricMaxDrawdown = "max_drawdown"
)

// BacktestResult is the full output of an equal-weight backtest
type BacktestResult struct {
	Profile     RiskProfile            `json:"profile"`
	Period      Period                 `json:"period"`
	Symbols     []SymbolBacktestResult `json:"symbols"`
	EquityCurve []EquityPoint          `json:"equity_curve"`
	Metrics     map[string]float64     `json:"metrics"`
}

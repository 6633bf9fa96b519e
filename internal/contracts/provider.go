package contracts

import "context"

// MarketDataProvider is the capability contract for market data sources.
// Not-found is reported as a nil result with a nil error; every other
// failure is returned as an error.
// ⭐ SSOT: ranking and backtesting only ever talk to this interface
type MarketDataProvider interface {
	// ListTickers returns the full tradable universe in listing order
	ListTickers(ctx context.Context) ([]Ticker, error)

	// GetQuote returns nil when the symbol is unknown or has no price data
	GetQuote(ctx context.Context, symbol string) (*Quote, error)

	// GetQuotes is best-effort: symbols without a quote are omitted
	GetQuotes(ctx context.Context, symbols []string) ([]Quote, error)

	// GetHistory returns daily candles for the period, oldest first
	GetHistory(ctx context.Context, symbol string, period Period) ([]Candle, error)

	// GetFundamentals returns nil when nothing is reported for the symbol
	GetFundamentals(ctx context.Context, symbol string) (*Fundamentals, error)

	// Release frees held resources. Safe to call more than once.
	Release() error
}

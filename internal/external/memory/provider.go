package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/aktietipset/backend/internal/contracts"
)

// Method names used as call-counter keys
const (
	MethodListTickers     = "ListTickers"
	MethodGetQuote        = "GetQuote"
	MethodGetQuotes       = "GetQuotes"
	MethodGetHistory      = "GetHistory"
	MethodGetFundamentals = "GetFundamentals"
	MethodRelease         = "Release"
)

// Provider is a deterministic in-memory market data source.
// It serves fixed data and counts calls per method.
type Provider struct {
	mu           sync.Mutex
	tickers      []contracts.Ticker
	quotes       map[string]contracts.Quote
	histories    map[string][]contracts.Candle
	fundamentals map[string]contracts.Fundamentals
	errs         map[string]error
	calls        map[string]int
	released     bool

	// when set, histories are cut to the requested period ending at now()
	now func() time.Time
}

var _ contracts.MarketDataProvider = (*Provider)(nil)

// New creates an empty provider
func New() *Provider {
	return &Provider{
		quotes:       make(map[string]contracts.Quote),
		histories:    make(map[string][]contracts.Candle),
		fundamentals: make(map[string]contracts.Fundamentals),
		errs:         make(map[string]error),
		calls:        make(map[string]int),
	}
}

// WithTickers sets the universe listing
func (p *Provider) WithTickers(tickers ...contracts.Ticker) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range tickers {
		t.Symbol = contracts.NormalizeSymbol(t.Symbol)
		p.tickers = append(p.tickers, t)
	}
	return p
}

// WithQuote sets the quote for a symbol
func (p *Provider) WithQuote(q contracts.Quote) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	q.Symbol = contracts.NormalizeSymbol(q.Symbol)
	p.quotes[q.Symbol] = q
	return p
}

// WithHistory sets the candle history for a symbol
func (p *Provider) WithHistory(symbol string, candles []contracts.Candle) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.histories[contracts.NormalizeSymbol(symbol)] = append([]contracts.Candle(nil), candles...)
	return p
}

// WithFundamentals sets the fundamentals for a symbol
func (p *Provider) WithFundamentals(symbol string, f contracts.Fundamentals) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fundamentals[contracts.NormalizeSymbol(symbol)] = f
	return p
}

// WithError makes every call of method fail with err
func (p *Provider) WithError(method string, err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errs[method] = err
	return p
}

// WithClock makes GetHistory honour the period window relative to now
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.now = now
	return p
}

// Calls returns how many times method was invoked
func (p *Provider) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls[method]
}

// Released reports whether Release was called
func (p *Provider) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.released
}

func (p *Provider) enter(method string) error {
	p.calls[method]++
	return p.errs[method]
}

// ListTickers returns the configured universe
func (p *Provider) ListTickers(ctx context.Context) ([]contracts.Ticker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(MethodListTickers); err != nil {
		return nil, err
	}
	return append([]contracts.Ticker{}, p.tickers...), nil
}

// GetQuote returns the configured quote or nil
func (p *Provider) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(MethodGetQuote); err != nil {
		return nil, err
	}
	q, ok := p.quotes[contracts.NormalizeSymbol(symbol)]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

// GetQuotes returns configured quotes in input order, skipping unknowns
func (p *Provider) GetQuotes(ctx context.Context, symbols []string) ([]contracts.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(MethodGetQuotes); err != nil {
		return nil, err
	}
	quotes := make([]contracts.Quote, 0, len(symbols))
	for _, s := range contracts.NormalizeSymbols(symbols) {
		if q, ok := p.quotes[s]; ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// GetHistory returns the configured candles. Without a clock the period
// is ignored and the whole series is served.
func (p *Provider) GetHistory(ctx context.Context, symbol string, period contracts.Period) ([]contracts.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(MethodGetHistory); err != nil {
		return nil, err
	}

	candles := p.histories[contracts.NormalizeSymbol(symbol)]
	if p.now == nil {
		return append([]contracts.Candle{}, candles...), nil
	}

	from, to := period.Range(p.now())
	out := make([]contracts.Candle, 0, len(candles))
	for _, c := range candles {
		if !c.Timestamp.Before(from) && !c.Timestamp.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetFundamentals returns configured fundamentals or nil
func (p *Provider) GetFundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(MethodGetFundamentals); err != nil {
		return nil, err
	}
	f, ok := p.fundamentals[contracts.NormalizeSymbol(symbol)]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// Release marks the provider released. Idempotent.
func (p *Provider) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[MethodRelease]++
	p.released = true
	return nil
}

package massive

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/metrics"
)

const snapshotPathFormat = "v2/snapshot/locale/us/markets/stocks/tickers/%s"

// quoteFanOut bounds concurrent snapshot requests in GetQuotes.
// The pacer still serializes dispatches; this only overlaps latency.
const quoteFanOut = 4

// GetQuote returns the latest quote, or nil when the symbol is unknown
// or upstream has neither a last trade nor a day close
func (c *Client) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, nil
	}

	if cached, ok := c.cache.Get(quoteKey(symbol)); ok {
		metrics.RecordCacheLookup("quote", true)
		q := cached.(contracts.Quote)
		return &q, nil
	}
	metrics.RecordCacheLookup("quote", false)

	var resp SnapshotResponse
	if err := c.fetchJSON(ctx, "snapshot", fmt.Sprintf(snapshotPathFormat, symbol), nil, &resp); err != nil {
		if contracts.IsNotFoundStatus(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote %s: %w", symbol, err)
	}

	quote, ok := normalizeSnapshot(symbol, resp.Ticker)
	if !ok {
		c.logger.WithField("symbol", symbol).Debug("Snapshot has no usable price")
		return nil, nil
	}

	c.cache.Set(quoteKey(symbol), quote, QuoteTTL)
	return &quote, nil
}

// GetQuotes fetches quotes for every symbol, omitting those without one.
// Results keep the input order.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) ([]contracts.Quote, error) {
	symbols = contracts.NormalizeSymbols(symbols)
	found := make([]*contracts.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteFanOut)

	for i, symbol := range symbols {
		g.Go(func() error {
			q, err := c.GetQuote(gctx, symbol)
			if err != nil {
				return err
			}
			found[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	quotes := make([]contracts.Quote, 0, len(symbols))
	for _, q := range found {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes, nil
}

// normalizeSnapshot resolves price from the last trade, then the day
// close. Zero counts as missing for both price and volume.
func normalizeSnapshot(symbol string, snap *SnapshotTicker) (contracts.Quote, bool) {
	if snap == nil {
		return contracts.Quote{}, false
	}

	var price float64
	switch {
	case snap.LastTrade != nil && valueOrZero(snap.LastTrade.P) != 0:
		price = *snap.LastTrade.P
	case snap.Day != nil && valueOrZero(snap.Day.C) != 0:
		price = *snap.Day.C
	default:
		return contracts.Quote{}, false
	}

	var volume int64
	if snap.Day != nil {
		volume = int64(valueOrZero(snap.Day.V))
	}

	return contracts.Quote{
		Symbol:    symbol,
		Price:     price,
		ChangePct: valueOrZero(snap.TodaysChangePerc),
		Volume:    volume,
	}, true
}

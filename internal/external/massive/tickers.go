package massive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/metrics"
)

const tickersPath = "v3/reference/tickers"

// ListTickers returns the full active stock universe.
// Every page is fetched before the list is cached as a whole.
func (c *Client) ListTickers(ctx context.Context) ([]contracts.Ticker, error) {
	if cached, ok := c.cache.Get(universeKey); ok {
		metrics.RecordCacheLookup("universe", true)
		tickers := cached.([]contracts.Ticker)
		return append([]contracts.Ticker(nil), tickers...), nil
	}
	metrics.RecordCacheLookup("universe", false)

	return c.fetchUniverse(ctx)
}

// RefreshUniverse refetches the universe without consulting the cache and
// replaces the cached copy, resetting its TTL. A failed refresh leaves the
// previous entry in place.
func (c *Client) RefreshUniverse(ctx context.Context) ([]contracts.Ticker, error) {
	return c.fetchUniverse(ctx)
}

func (c *Client) fetchUniverse(ctx context.Context) ([]contracts.Ticker, error) {
	params := url.Values{}
	params.Set("market", "stocks")
	params.Set("active", "true")

	tickers := make([]contracts.Ticker, 0)
	seen := make(map[string]bool)
	next := tickersPath
	pages := 0

	for next != "" {
		if seen[next] {
			c.logger.WithField("next_url", redact(next)).Warn("Pagination cursor repeated, stopping")
			break
		}
		seen[next] = true

		var page TickerListResponse
		if err := c.fetchJSON(ctx, "tickers", next, params, &page); err != nil {
			return nil, fmt.Errorf("list tickers (page %d): %w", pages+1, err)
		}
		pages++

		for _, item := range page.Results {
			symbol := contracts.NormalizeSymbol(item.Ticker)
			if symbol == "" {
				continue
			}
			tickers = append(tickers, contracts.Ticker{
				Symbol:   symbol,
				Name:     item.Name,
				Market:   item.Market,
				Exchange: item.PrimaryExchange,
				Currency: strings.ToUpper(item.CurrencyName),
			})
		}

		next = page.NextURL
	}

	c.cache.Set(universeKey, tickers, UniverseTTL)

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"pages":   pages,
	}).Info("Fetched ticker universe")

	return append([]contracts.Ticker(nil), tickers...), nil
}

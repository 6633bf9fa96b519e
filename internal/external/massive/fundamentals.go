package massive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/metrics"
)

const financialsPathFormat = "v2/reference/financials/%s"

// GetFundamentals returns ratios from the most recent filing, or nil
// when upstream has no filing for the symbol
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, nil
	}

	if cached, ok := c.cache.Get(fundamentalsKey(symbol)); ok {
		metrics.RecordCacheLookup("fundamentals", true)
		f := cached.(contracts.Fundamentals)
		return &f, nil
	}
	metrics.RecordCacheLookup("fundamentals", false)

	params := url.Values{}
	params.Set("limit", "1")

	var resp FinancialsResponse
	if err := c.fetchJSON(ctx, "financials", fmt.Sprintf(financialsPathFormat, symbol), params, &resp); err != nil {
		if contracts.IsNotFoundStatus(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fundamentals %s: %w", symbol, err)
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}

	f := normalizeFinancials(resp.Results[0])
	c.cache.Set(fundamentalsKey(symbol), f, FundamentalsTTL)
	return &f, nil
}

func normalizeFinancials(r FinancialRecord) contracts.Fundamentals {
	return contracts.Fundamentals{
		PE:            pickRatio(r.Metrics, r.Ratios, "pe_ratio"),
		PS:            pickRatio(r.Metrics, r.Ratios, "price_to_sales_ratio"),
		ROE:           pickRatio(r.Metrics, r.Ratios, "return_on_equity"),
		DebtToEquity:  pickRatio(r.Metrics, r.Ratios, "debt_to_equity"),
		Growth5Y:      pickRatio(r.Metrics, r.Ratios, "revenue_growth_five_year"),
		ProfitMargin:  pickRatio(r.Metrics, r.Ratios, "net_profit_margin"),
		Beta:          pickRatio(r.Metrics, r.Ratios, "beta"),
		DividendYield: pickRatio(r.Metrics, r.Ratios, "dividend_yield"),
	}
}

package massive

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/wonny/aktietipset/backend/internal/contracts"
)

const aggsPathFormat = "v2/aggs/ticker/%s/range/1/day/%s/%s"

const dateLayout = "2006-01-02"

// GetHistory returns daily candles for the period, oldest first.
// History is never cached.
func (c *Client) GetHistory(ctx context.Context, symbol string, period contracts.Period) ([]contracts.Candle, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	if symbol == "" {
		return []contracts.Candle{}, nil
	}

	from, to := period.Range(c.now())
	path := fmt.Sprintf(aggsPathFormat, symbol, from.Format(dateLayout), to.Format(dateLayout))

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("limit", "5000")

	var resp AggsResponse
	if err := c.fetchJSON(ctx, "aggregates", path, params, &resp); err != nil {
		if contracts.IsNotFoundStatus(err) {
			return []contracts.Candle{}, nil
		}
		return nil, fmt.Errorf("get history %s: %w", symbol, err)
	}

	candles := normalizeAggs(resp.Results)

	c.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"period":  string(period),
		"candles": len(candles),
	}).Debug("Fetched history")

	return candles, nil
}

// normalizeAggs maps bars to candles, zero-filling missing prices, and
// keeps the series ordered with one candle per timestamp
func normalizeAggs(records []AggRecord) []contracts.Candle {
	candles := make([]contracts.Candle, 0, len(records))
	for _, r := range records {
		candles = append(candles, contracts.Candle{
			Timestamp: barTime(r.T),
			Open:      valueOrZero(r.O),
			High:      valueOrZero(r.H),
			Low:       valueOrZero(r.L),
			Close:     valueOrZero(r.C),
			Volume:    valueOrZero(r.V),
		})
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	// last bar wins on duplicate timestamps
	deduped := candles[:0]
	for _, candle := range candles {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp.Equal(candle.Timestamp) {
			deduped[n-1] = candle
			continue
		}
		deduped = append(deduped, candle)
	}

	return deduped
}

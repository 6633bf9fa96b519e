package selection

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/signals"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// Ranking defaults
const (
	DefaultLimit       = 10
	DefaultConcurrency = 4
	HistoryPeriod      = contracts.Period1Y
)

// Ranker builds scored, ordered recommendations from a market data provider
// ⭐ SSOT: ranking order is decided here only
type Ranker struct {
	provider    contracts.MarketDataProvider
	scorer      *signals.Scorer
	concurrency int
	logger      *logger.Logger
}

// NewRanker creates a new ranker. concurrency <= 0 uses the default.
func NewRanker(provider contracts.MarketDataProvider, scorer *signals.Scorer, concurrency int, log *logger.Logger) *Ranker {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Ranker{
		provider:    provider,
		scorer:      scorer,
		concurrency: concurrency,
		logger:      log,
	}
}

// Rank scores the requested symbols, or the head of the universe when none
// are given, and returns them by composite score descending.
// Any provider error fails the whole ranking.
func (r *Ranker) Rank(ctx context.Context, req contracts.RankingRequest) ([]contracts.Recommendation, error) {
	profile := req.Profile
	if profile == "" {
		profile = contracts.ProfileBalanced
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	symbols, err := r.resolveSymbols(ctx, req.Symbols, limit)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return []contracts.Recommendation{}, nil
	}

	quotes, err := r.provider.GetQuotes(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	bySymbol := make(map[string]contracts.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[contracts.NormalizeSymbol(q.Symbol)] = q
	}

	entries := make([]contracts.SnapshotEntry, 0, len(symbols))
	for _, symbol := range symbols {
		q, ok := bySymbol[symbol]
		if !ok {
			r.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
			}).Debug("No quote for symbol, skipping")
			continue
		}
		entries = append(entries, contracts.SnapshotEntry{Quote: q})
	}

	if err := r.enrich(ctx, entries); err != nil {
		return nil, err
	}

	ranked := make([]contracts.Recommendation, 0, len(entries))
	for _, entry := range entries {
		eval := r.scorer.Evaluate(entry, profile)
		ranked = append(ranked, contracts.Recommendation{
			Symbol:    entry.Quote.Symbol,
			Price:     entry.Quote.Price,
			ChangePct: entry.Quote.ChangePct,
			Score:     eval.Composite,
			Signal:    eval.Signal,
			Factors:   eval.Factors,
			Profile:   profile,
		})
	}

	// Sort by score (descending), ties keep request order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	fields := map[string]interface{}{
		"requested": len(symbols),
		"ranked":    len(ranked),
		"profile":   profile,
	}
	if len(ranked) > 0 {
		fields["top_symbol"] = ranked[0].Symbol
		fields["top_score"] = ranked[0].Score
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked, nil
}

// resolveSymbols picks the symbols to rank
func (r *Ranker) resolveSymbols(ctx context.Context, requested []string, limit int) ([]string, error) {
	symbols := contracts.NormalizeSymbols(requested)
	if len(symbols) == 0 {
		tickers, err := r.provider.ListTickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tickers: %w", err)
		}
		for _, t := range tickers {
			if len(symbols) == limit {
				break
			}
			symbols = append(symbols, t.Symbol)
		}
		return symbols, nil
	}

	if len(symbols) > limit {
		symbols = symbols[:limit]
	}
	return symbols, nil
}

// enrich fetches fundamentals and history for each entry in place
func (r *Ranker) enrich(ctx context.Context, entries []contracts.SnapshotEntry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range entries {
		entry := &entries[i]
		g.Go(func() error {
			symbol := entry.Quote.Symbol

			f, err := r.provider.GetFundamentals(gctx, symbol)
			if err != nil {
				return fmt.Errorf("failed to get fundamentals for %s: %w", symbol, err)
			}
			history, err := r.provider.GetHistory(gctx, symbol, HistoryPeriod)
			if err != nil {
				return fmt.Errorf("failed to get history for %s: %w", symbol, err)
			}

			entry.Fundamentals = f
			entry.History = history
			return nil
		})
	}

	return g.Wait()
}

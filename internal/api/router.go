package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/aktietipset/backend/internal/alerts"
	"github.com/wonny/aktietipset/backend/internal/api/handlers"
	"github.com/wonny/aktietipset/backend/internal/backtest"
	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/selection"
	"github.com/wonny/aktietipset/backend/internal/signals"
	"github.com/wonny/aktietipset/backend/internal/strategyconfig"
	"github.com/wonny/aktietipset/backend/pkg/config"
	"github.com/wonny/aktietipset/backend/pkg/logger"
	"github.com/wonny/aktietipset/backend/pkg/metrics"
	"github.com/wonny/aktietipset/backend/pkg/validation"
)

// Dependencies are the services the router exposes.
// Provider, Ranker and Engine are nil when no market data provider is configured.
type Dependencies struct {
	Provider     contracts.MarketDataProvider
	Ranker       *selection.Ranker
	Engine       *backtest.Engine
	Alerts       *alerts.Repository
	DefaultLimit int
}

// NewDependencies wires the ranking and backtest services around provider
// using the built-in strategy
func NewDependencies(provider contracts.MarketDataProvider, concurrency int, log *logger.Logger) Dependencies {
	deps, err := NewDependenciesWithStrategy(provider, strategyconfig.Default(), concurrency, log)
	if err != nil {
		// the built-in strategy always validates
		panic(err)
	}
	return deps
}

// NewDependenciesWithStrategy wires the services with the strategy's weights,
// ranking limit and backtest alignment
func NewDependenciesWithStrategy(provider contracts.MarketDataProvider, strategy *strategyconfig.Config, concurrency int, log *logger.Logger) (Dependencies, error) {
	if err := strategyconfig.Validate(strategy); err != nil {
		return Dependencies{}, fmt.Errorf("invalid strategy %q: %w", strategy.Meta.StrategyID, err)
	}

	deps := Dependencies{
		Alerts:       alerts.NewRepository(log),
		DefaultLimit: strategy.Ranking.DefaultLimit,
	}
	if provider == nil {
		return deps, nil
	}

	scorer, err := signals.NewScorer(log).WithWeights(strategy.SignalWeights())
	if err != nil {
		return Dependencies{}, err
	}

	deps.Provider = provider
	deps.Ranker = selection.NewRanker(provider, scorer, concurrency, log)
	deps.Engine = backtest.NewEngine(provider, strategy.BacktestConfig(concurrency), log)
	return deps, nil
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are registered in this function only
func NewRouter(cfg *config.Config, deps Dependencies, log *logger.Logger) http.Handler {
	v := validation.New()
	market := handlers.NewMarketHandler(deps.Provider, log)
	rankings := handlers.NewRankingHandler(deps.Ranker, deps.DefaultLimit, v, log)
	backtests := handlers.NewBacktestHandler(deps.Engine, v, log)
	alertHandler := handlers.NewAlertHandler(deps.Alerts, v, log)

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handlers.Health(deps.Provider != nil)).Methods("GET")
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	// API v1
	api := r.PathPrefix("/v1").Subrouter()

	// Market data
	api.HandleFunc("/tickers", market.ListTickers).Methods("GET")
	api.HandleFunc("/quotes/{symbol}", market.GetQuote).Methods("GET")
	api.HandleFunc("/history/{symbol}", market.GetHistory).Methods("GET")
	api.HandleFunc("/fundamentals/{symbol}", market.GetFundamentals).Methods("GET")

	// Analysis
	api.HandleFunc("/rankings", rankings.GetRankings).Methods("GET")
	api.HandleFunc("/backtests", backtests.Run).Methods("POST")

	// Alerts
	api.HandleFunc("/alerts", alertHandler.List).Methods("GET")
	api.HandleFunc("/alerts", alertHandler.Create).Methods("POST")
	api.HandleFunc("/alerts/{id}", alertHandler.Update).Methods("PATCH")
	api.HandleFunc("/alerts/{id}", alertHandler.Delete).Methods("DELETE")

	r.Use(metricsMiddleware())

	// Outer middleware also covers unmatched routes and CORS preflight
	var h http.Handler = r
	if cfg.API.RateLimitRPS > 0 {
		trusted, err := cfg.API.TrustedProxyPrefixes()
		if err != nil {
			log.WithError(err).Warn("Ignoring trusted proxies")
			trusted = nil
		}
		limiter := NewRateLimiter(cfg.API.RateLimitRPS, cfg.API.RateLimitBurst).WithTrustedProxies(trusted)
		h = limiter.Middleware()(h)
	}
	h = corsMiddleware(cfg.API.CORSAllowOrigins)(h)
	h = loggingMiddleware(log)(h)
	h = recoveryMiddleware(log)(h)

	return h
}

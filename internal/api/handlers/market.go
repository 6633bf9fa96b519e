package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// MarketHandler serves raw market data straight from the provider
// ⭐ SSOT: market data API handlers live in this struct only
type MarketHandler struct {
	provider contracts.MarketDataProvider
	logger   *logger.Logger
}

// NewMarketHandler creates a new market handler. provider may be nil.
func NewMarketHandler(provider contracts.MarketDataProvider, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		provider: provider,
		logger:   log,
	}
}

// ListTickers returns the tradable universe
// GET /v1/tickers
func (h *MarketHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondNoProvider(w)
		return
	}

	tickers, err := h.provider.ListTickers(r.Context())
	if err != nil {
		respondProviderError(w, h.logger, "list_tickers", err)
		return
	}
	respondJSON(w, http.StatusOK, tickers)
}

// GetQuote returns the latest quote for a symbol
// GET /v1/quotes/{symbol}
func (h *MarketHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondNoProvider(w)
		return
	}
	symbol := contracts.NormalizeSymbol(mux.Vars(r)["symbol"])

	quote, err := h.provider.GetQuote(r.Context(), symbol)
	if err != nil {
		respondProviderError(w, h.logger, "get_quote", err)
		return
	}
	if quote == nil {
		respondError(w, http.StatusNotFound, "No quote found for "+symbol)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// GetHistory returns daily candles for a symbol
// GET /v1/history/{symbol}?period=1y
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondNoProvider(w)
		return
	}
	symbol := contracts.NormalizeSymbol(mux.Vars(r)["symbol"])

	period := contracts.PeriodOrDefault(r.URL.Query().Get("period"))

	candles, err := h.provider.GetHistory(r.Context(), symbol, period)
	if err != nil {
		respondProviderError(w, h.logger, "get_history", err)
		return
	}
	if candles == nil {
		candles = []contracts.Candle{}
	}
	respondJSON(w, http.StatusOK, candles)
}

// GetFundamentals returns the fundamentals snapshot for a symbol
// GET /v1/fundamentals/{symbol}
func (h *MarketHandler) GetFundamentals(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondNoProvider(w)
		return
	}
	symbol := contracts.NormalizeSymbol(mux.Vars(r)["symbol"])

	f, err := h.provider.GetFundamentals(r.Context(), symbol)
	if err != nil {
		respondProviderError(w, h.logger, "get_fundamentals", err)
		return
	}
	if f == nil {
		respondError(w, http.StatusNotFound, "No fundamentals found for "+symbol)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

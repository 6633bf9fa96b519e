package handlers

import (
	"net/http"

	"github.com/wonny/aktietipset/backend/internal/backtest"
	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
	"github.com/wonny/aktietipset/backend/pkg/validation"
)

// BacktestRequest is the JSON body of a backtest run
type BacktestRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=50,dive,required,max=16"`
	Period  string   `json:"period" validate:"omitempty,max=16"`
	Profile string   `json:"profile" validate:"omitempty,oneof=conservative balanced aggressive"`
}

// BacktestHandler runs backtests on request
type BacktestHandler struct {
	engine   *backtest.Engine
	validate *validation.Validator
	logger   *logger.Logger
}

// NewBacktestHandler creates a new backtest handler. engine is nil when no provider is configured.
func NewBacktestHandler(engine *backtest.Engine, v *validation.Validator, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		engine:   engine,
		validate: v,
		logger:   log,
	}
}

// Run executes an equal-weight backtest
// POST /v1/backtests
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Symbols = contracts.NormalizeSymbols(req.Symbols)
	if err := h.validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	if h.engine == nil {
		respondNoProvider(w)
		return
	}

	period := contracts.PeriodOrDefault(req.Period)
	profile, err := contracts.ParseRiskProfile(req.Profile)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Run(r.Context(), contracts.BacktestRequest{
		Symbols: req.Symbols,
		Period:  period,
		Profile: profile,
	})
	if err != nil {
		respondProviderError(w, h.logger, "backtest", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

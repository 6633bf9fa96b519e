package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/selection"
	"github.com/wonny/aktietipset/backend/pkg/logger"
	"github.com/wonny/aktietipset/backend/pkg/validation"
)

// RankingQuery is the validated form of the rankings query string
type RankingQuery struct {
	Symbols []string `json:"symbols" validate:"max=100,dive,required,max=16"`
	Profile string   `json:"profile" validate:"omitempty,oneof=conservative balanced aggressive"`
	Limit   int      `json:"limit" validate:"min=1,max=100"`
}

// RankingHandler serves scored recommendations
type RankingHandler struct {
	ranker       *selection.Ranker
	defaultLimit int
	validate     *validation.Validator
	logger       *logger.Logger
}

// NewRankingHandler creates a new ranking handler. ranker is nil when no provider is configured.
// defaultLimit applies when the query has no limit; <= 0 uses the ranker default.
func NewRankingHandler(ranker *selection.Ranker, defaultLimit int, v *validation.Validator, log *logger.Logger) *RankingHandler {
	if defaultLimit <= 0 {
		defaultLimit = selection.DefaultLimit
	}
	return &RankingHandler{
		ranker:       ranker,
		defaultLimit: defaultLimit,
		validate:     v,
		logger:       log,
	}
}

// GetRankings builds a ranking
// GET /v1/rankings?symbols=AAPL,MSFT&profile=balanced&limit=10
func (h *RankingHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	if h.ranker == nil {
		respondNoProvider(w)
		return
	}

	q := RankingQuery{Limit: h.defaultLimit}
	params := r.URL.Query()

	if raw := params.Get("symbols"); raw != "" {
		q.Symbols = contracts.NormalizeSymbols(strings.Split(raw, ","))
	}
	q.Profile = strings.ToLower(strings.TrimSpace(params.Get("profile")))
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q.Limit = limit
	}

	if err := h.validate.Struct(q); err != nil {
		respondValidation(w, err)
		return
	}
	profile, err := contracts.ParseRiskProfile(q.Profile)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.ranker.Rank(r.Context(), contracts.RankingRequest{
		Symbols: q.Symbols,
		Profile: profile,
		Limit:   q.Limit,
	})
	if err != nil {
		respondProviderError(w, h.logger, "rank", err)
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

package signals

import (
	"fmt"
	"math"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// Weights blends the three sub-scores into the composite
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Risk        float64 `json:"risk"`
}

// DefaultWeights returns the standard blend
func DefaultWeights() Weights {
	return Weights{
		Technical:   0.45,
		Fundamental: 0.40,
		Risk:        0.15,
	}
}

// Validate checks that weights are non-negative and sum to 1
func (w Weights) Validate() error {
	if w.Technical < 0 || w.Fundamental < 0 || w.Risk < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if sum := w.Technical + w.Fundamental + w.Risk; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// Evaluation is the full scoring breakdown for one snapshot
type Evaluation struct {
	Technical   SubScore         `json:"technical"`
	Fundamental SubScore         `json:"fundamental"`
	Risk        SubScore         `json:"risk"`
	Composite   float64          `json:"composite"`
	Signal      contracts.Signal `json:"signal"`
	Factors     []string         `json:"factors"`
}

// Scorer computes composite scores from snapshot entries
// ⭐ SSOT: scoring rules are applied here only
type Scorer struct {
	weights Weights
	logger  *logger.Logger
}

// NewScorer creates a scorer with the default weights
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		weights: DefaultWeights(),
		logger:  log,
	}
}

// WithWeights overrides the blend
func (s *Scorer) WithWeights(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	s.weights = w
	return s, nil
}

// Evaluate scores one snapshot for a risk profile
func (s *Scorer) Evaluate(entry contracts.SnapshotEntry, profile contracts.RiskProfile) Evaluation {
	candles := SortCandles(entry.History)

	technical := ScoreTechnical(entry.Quote, candles)
	fundamental := ScoreFundamental(entry.Fundamentals)
	risk := ScoreRisk(entry.Fundamentals, candles, profile)

	composite := Clamp(
		s.weights.Technical*technical.Value+
			s.weights.Fundamental*fundamental.Value+
			s.weights.Risk*risk.Value,
		0, 100,
	)

	factors := make([]string, 0, contracts.MaxFactors)
	factors = append(factors, technical.Factors...)
	factors = append(factors, fundamental.Factors...)
	factors = append(factors, risk.Factors...)
	factors = truncate(factors, contracts.MaxFactors)

	eval := Evaluation{
		Technical:   technical,
		Fundamental: fundamental,
		Risk:        risk,
		Composite:   composite,
		Signal:      contracts.SignalForScore(composite),
		Factors:     factors,
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol":      entry.Quote.Symbol,
		"technical":   technical.Value,
		"fundamental": fundamental.Value,
		"risk":        risk.Value,
		"composite":   composite,
		"signal":      eval.Signal,
	}).Debug("Scored snapshot")

	return eval
}

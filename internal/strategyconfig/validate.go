package strategyconfig

import (
	"fmt"

	"github.com/wonny/aktietipset/backend/internal/backtest"
)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Scoring ===
	if err := cfg.SignalWeights().Validate(); err != nil {
		return ValidationError{"scoring.weights", err.Error()}
	}

	// === Ranking ===
	if cfg.Ranking.DefaultLimit < 1 || cfg.Ranking.DefaultLimit > 100 {
		return ValidationError{"ranking.default_limit", "must be in [1, 100]"}
	}

	// === Backtest ===
	if _, err := backtest.ParseAlignment(cfg.Backtest.Alignment); err != nil {
		return ValidationError{"backtest.alignment", err.Error()}
	}

	return nil
}

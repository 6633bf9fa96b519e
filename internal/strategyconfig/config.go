package strategyconfig

import (
	"github.com/wonny/aktietipset/backend/internal/backtest"
	"github.com/wonny/aktietipset/backend/internal/selection"
	"github.com/wonny/aktietipset/backend/internal/signals"
)

// Config is a named scoring strategy loaded from YAML
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Scoring  Scoring  `yaml:"scoring" json:"scoring"`
	Ranking  Ranking  `yaml:"ranking" json:"ranking"`
	Backtest Backtest `yaml:"backtest" json:"backtest"`
}

// Meta identifies the strategy
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Scoring holds the composite blend
type Scoring struct {
	Weights Weights `yaml:"weights" json:"weights"`
}

// Weights are the sub-score weights, summing to 1
type Weights struct {
	Technical   float64 `yaml:"technical" json:"technical"`
	Fundamental float64 `yaml:"fundamental" json:"fundamental"`
	Risk        float64 `yaml:"risk" json:"risk"`
}

// Ranking holds ranking defaults
type Ranking struct {
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`
}

// Backtest holds backtest engine options
type Backtest struct {
	Alignment string `yaml:"alignment" json:"alignment"` // date | position
}

// Default returns the built-in strategy
func Default() *Config {
	w := signals.DefaultWeights()
	return &Config{
		Meta: Meta{
			StrategyID: "default",
			Version:    "1",
		},
		Scoring: Scoring{
			Weights: Weights{
				Technical:   w.Technical,
				Fundamental: w.Fundamental,
				Risk:        w.Risk,
			},
		},
		Ranking: Ranking{
			DefaultLimit: selection.DefaultLimit,
		},
		Backtest: Backtest{
			Alignment: string(backtest.AlignByDate),
		},
	}
}

// SignalWeights converts the blend for the scorer
func (c *Config) SignalWeights() signals.Weights {
	return signals.Weights{
		Technical:   c.Scoring.Weights.Technical,
		Fundamental: c.Scoring.Weights.Fundamental,
		Risk:        c.Scoring.Weights.Risk,
	}
}

// BacktestConfig builds the engine configuration. Call Validate first.
func (c *Config) BacktestConfig(concurrency int) backtest.Config {
	alignment, err := backtest.ParseAlignment(c.Backtest.Alignment)
	if err != nil {
		alignment = backtest.AlignByDate
	}
	return backtest.Config{
		Alignment:   alignment,
		Concurrency: concurrency,
	}
}

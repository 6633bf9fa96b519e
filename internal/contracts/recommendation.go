package contracts

import (
	"fmt"
	"strings"
)

// RiskProfile is the caller-selected stance that perturbs risk scoring
type RiskProfile string

const (
	ProfileConservative RiskProfile = "conservative"
	ProfileBalanced     RiskProfile = "balanced"
	ProfileAggressive   RiskProfile = "aggressive"
)

// ParseRiskProfile parses a profile name, defaulting empty input to balanced
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch RiskProfile(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ProfileBalanced, nil
	case ProfileConservative:
		return ProfileConservative, nil
	case ProfileBalanced:
		return ProfileBalanced, nil
	case ProfileAggressive:
		return ProfileAggressive, nil
	default:
		return "", fmt.Errorf("unknown risk profile %q", s)
	}
}

// Signal is the trade signal derived from a composite score
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalHold Signal = "HOLD"
	SignalSell Signal = "SELL"
)

// Signal thresholds on the composite score
const (
	BuyThreshold  = 70.0
	SellThreshold = 45.0
)

// SignalForScore classifies a composite score
func SignalForScore(score float64) Signal {
	switch {
	case score >= BuyThreshold:
		return SignalBuy
	case score <= SellThreshold:
		return SignalSell
	default:
		return SignalHold
	}
}

// MaxFactors is the upper bound on explanation strings per recommendation
const MaxFactors = 3

// Recommendation is one ranked output row
type Recommendation struct {
	Symbol    string      `json:"symbol"`
	Price     float64     `json:"price"`
	ChangePct float64     `json:"change_pct"`
	Score     float64     `json:"score"`
	Signal    Signal      `json:"signal"`
	Factors   []string    `json:"factors"`
	Profile   RiskProfile `json:"profile"`
}

// RankingRequest is the input to the ranking pipeline
type RankingRequest struct {
	Symbols []string
	Profile RiskProfile
	Limit   int
}

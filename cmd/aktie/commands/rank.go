package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/selection"
	"github.com/wonny/aktietipset/backend/internal/signals"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank [SYMBOL...]",
	Short: "Score and rank stocks",
	Long: `Score symbols on technical, fundamental and risk factors and print
them by composite score. Without symbols the head of the universe is ranked.

Example:
  go run ./cmd/aktie rank
  go run ./cmd/aktie rank AAPL MSFT KO --profile conservative
  go run ./cmd/aktie rank --limit 5 --offline`,
	RunE: runRank,
}

var (
	rankProfile string
	rankLimit   int
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankProfile, "profile", "balanced", "risk profile (conservative|balanced|aggressive)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", selection.DefaultLimit, "maximum number of symbols to rank (default from strategy)")
}

func runRank(cmd *cobra.Command, args []string) error {
	profile, err := contracts.ParseRiskProfile(rankProfile)
	if err != nil {
		return err
	}

	return withProvider(cmd, func(ctx context.Context, s session) error {
		limit := s.strategy.Ranking.DefaultLimit
		if cmd.Flags().Changed("limit") {
			limit = rankLimit
		}
		if limit < 1 || limit > 100 {
			return fmt.Errorf("limit must be between 1 and 100")
		}

		scorer, err := signals.NewScorer(s.logger).WithWeights(s.strategy.SignalWeights())
		if err != nil {
			return err
		}
		ranker := selection.NewRanker(s.provider, scorer, s.config.Massive.Concurrency, s.logger)
		ranked, err := ranker.Rank(ctx, contracts.RankingRequest{
			Symbols: args,
			Profile: profile,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("ranking failed: %w", err)
		}

		if asJSON {
			return PrintJSON(ranked)
		}
		printRanking(ranked, profile)
		return nil
	})
}

func printRanking(ranked []contracts.Recommendation, profile contracts.RiskProfile) {
	PrintHeader("Ranking", fmt.Sprintf("Profile   : %s", profile), fmt.Sprintf("Symbols   : %d", len(ranked)))
	if len(ranked) == 0 {
		PrintWarning("No symbols could be ranked")
		return
	}

	tw := newTable("#", "SYMBOL", "PRICE", "CHANGE", "SCORE", "SIGNAL", "FACTORS")
	for i, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%+.2f%%\t%.1f\t%s\t%s\n",
			i+1, r.Symbol, r.Price, r.ChangePct, r.Score, r.Signal, strings.Join(r.Factors, "; "))
	}
	tw.Flush()
	PrintSeparator()
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/aktietipset/backend/internal/backtest"
	"github.com/wonny/aktietipset/backend/internal/contracts"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Equal-weight buy-and-hold backtests",
	Long: `Replay daily closes for a basket of symbols.

Reported per symbol and for the equal-weight portfolio:
- CAGR
- Sharpe ratio
- Maximum drawdown

Example:
  go run ./cmd/aktie backtest run AAPL MSFT --period 3y
  go run ./cmd/aktie backtest run KO XOM --align position --offline`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run SYMBOL [SYMBOL...]",
		Short: "Run a backtest",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBacktest,
	}

	// Flags
	backtestPeriod  string
	backtestProfile string
	backtestAlign   string
	backtestCurve   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	backtestRunCmd.Flags().StringVar(&backtestPeriod, "period", "1y", "history period (1m|3m|6m|1y|3y|5y|10y|max)")
	backtestRunCmd.Flags().StringVar(&backtestProfile, "profile", "balanced", "risk profile label")
	backtestRunCmd.Flags().StringVar(&backtestAlign, "align", "date", "portfolio alignment (date|position, default from strategy)")
	backtestRunCmd.Flags().BoolVar(&backtestCurve, "curve", false, "print the equity curve")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	period, err := contracts.ParsePeriod(backtestPeriod)
	if err != nil {
		return err
	}
	profile, err := contracts.ParseRiskProfile(backtestProfile)
	if err != nil {
		return err
	}

	return withProvider(cmd, func(ctx context.Context, s session) error {
		engineCfg := s.strategy.BacktestConfig(s.config.Massive.Concurrency)
		if cmd.Flags().Changed("align") {
			alignment, err := backtest.ParseAlignment(backtestAlign)
			if err != nil {
				return err
			}
			engineCfg.Alignment = alignment
		}
		engine := backtest.NewEngine(s.provider, engineCfg, s.logger)

		result, err := engine.Run(ctx, contracts.BacktestRequest{
			Symbols: args,
			Period:  period,
			Profile: profile,
		})
		if err != nil {
			return fmt.Errorf("backtest failed: %w", err)
		}

		if asJSON {
			return PrintJSON(result)
		}
		printBacktest(result, engineCfg.Alignment)
		return nil
	})
}

func printBacktest(result *contracts.BacktestResult, alignment backtest.Alignment) {
	PrintHeader("Backtest",
		fmt.Sprintf("Period    : %s", result.Period),
		fmt.Sprintf("Profile   : %s", result.Profile),
		fmt.Sprintf("Alignment : %s", alignment),
	)
	if len(result.Symbols) == 0 {
		PrintWarning("No symbol had enough history to backtest")
		return
	}

	tw := newTable("SYMBOL", "CAGR", "SHARPE", "MAX DD")
	for _, s := range result.Symbols {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", s.Symbol, FormatPercent(s.CAGR), s.Sharpe, FormatPercent(s.MaxDrawdown))
	}
	tw.Flush()
	PrintSeparator()

	fmt.Printf("  Portfolio CAGR   : %s\n", FormatPercent(result.Metrics[contracts.MetricCAGR]))
	fmt.Printf("  Portfolio Sharpe : %.2f\n", result.Metrics[contracts.MetricSharpe])
	fmt.Printf("  Portfolio MaxDD  : %s\n", FormatPercent(result.Metrics[contracts.MetricMaxDrawdown]))

	if backtestCurve {
		PrintSeparator()
		tw = newTable("DATE", "EQUITY")
		for _, pt := range result.EquityCurve {
			fmt.Fprintf(tw, "%s\t%.4f\n", pt.Timestamp.Format("2006-01-02"), pt.Value)
		}
		tw.Flush()
	}
	PrintSeparator()
	fmt.Printf("  %d equity points\n", len(result.EquityCurve))
}

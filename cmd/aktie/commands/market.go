package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/aktietipset/backend/internal/contracts"
)

// marketCmd represents the market command
var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Query raw market data",
	Long: `Fetch market data straight from the provider.

Example:
  go run ./cmd/aktie market tickers --limit 20
  go run ./cmd/aktie market quote AAPL MSFT
  go run ./cmd/aktie market history AAPL --period 3m
  go run ./cmd/aktie market fundamentals KO`,
}

var (
	marketTickersCmd = &cobra.Command{
		Use:   "tickers",
		Short: "List the tradable universe",
		Args:  cobra.NoArgs,
		RunE:  runMarketTickers,
	}

	marketQuoteCmd = &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Show latest quotes",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMarketQuote,
	}

	marketHistoryCmd = &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show daily candles",
		Args:  cobra.ExactArgs(1),
		RunE:  runMarketHistory,
	}

	marketFundamentalsCmd = &cobra.Command{
		Use:   "fundamentals SYMBOL",
		Short: "Show the fundamentals snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runMarketFundamentals,
	}

	// Flags
	tickersLimit  int
	historyPeriod string
)

func init() {
	rootCmd.AddCommand(marketCmd)
	marketCmd.AddCommand(marketTickersCmd, marketQuoteCmd, marketHistoryCmd, marketFundamentalsCmd)

	marketTickersCmd.Flags().IntVar(&tickersLimit, "limit", 50, "maximum tickers to print (0 = all)")
	marketHistoryCmd.Flags().StringVar(&historyPeriod, "period", "1y", "history period (1m|3m|6m|1y|3y|5y|10y|max)")
}

func runMarketTickers(cmd *cobra.Command, args []string) error {
	return withProvider(cmd, func(ctx context.Context, s session) error {
		tickers, err := s.provider.ListTickers(ctx)
		if err != nil {
			return fmt.Errorf("list tickers: %w", err)
		}
		total := len(tickers)
		if tickersLimit > 0 && len(tickers) > tickersLimit {
			tickers = tickers[:tickersLimit]
		}

		if asJSON {
			return PrintJSON(tickers)
		}
		PrintHeader("Universe", fmt.Sprintf("Tickers   : %d (showing %d)", total, len(tickers)))
		tw := newTable("SYMBOL", "NAME", "EXCHANGE", "CURRENCY")
		for _, t := range tickers {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Symbol, t.Name, t.Exchange, t.Currency)
		}
		tw.Flush()
		return nil
	})
}

func runMarketQuote(cmd *cobra.Command, args []string) error {
	return withProvider(cmd, func(ctx context.Context, s session) error {
		quotes, err := s.provider.GetQuotes(ctx, contracts.NormalizeSymbols(args))
		if err != nil {
			return fmt.Errorf("get quotes: %w", err)
		}

		if asJSON {
			return PrintJSON(quotes)
		}
		PrintHeader("Quotes")
		if len(quotes) == 0 {
			PrintWarning("No quotes found")
			return nil
		}
		tw := newTable("SYMBOL", "PRICE", "CHANGE", "VOLUME")
		for _, q := range quotes {
			fmt.Fprintf(tw, "%s\t%.2f\t%+.2f%%\t%d\n", q.Symbol, q.Price, q.ChangePct, q.Volume)
		}
		tw.Flush()
		return nil
	})
}

func runMarketHistory(cmd *cobra.Command, args []string) error {
	period, err := contracts.ParsePeriod(historyPeriod)
	if err != nil {
		return err
	}
	symbol := contracts.NormalizeSymbol(args[0])

	return withProvider(cmd, func(ctx context.Context, s session) error {
		candles, err := s.provider.GetHistory(ctx, symbol, period)
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}

		if asJSON {
			return PrintJSON(candles)
		}
		PrintHeader("History", fmt.Sprintf("Symbol    : %s", symbol), fmt.Sprintf("Period    : %s", period))
		if len(candles) == 0 {
			PrintWarning("No price history found")
			return nil
		}
		tw := newTable("DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
		for _, c := range candles {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.0f\n",
				c.Timestamp.Format("2006-01-02"), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		tw.Flush()
		return nil
	})
}

func runMarketFundamentals(cmd *cobra.Command, args []string) error {
	symbol := contracts.NormalizeSymbol(args[0])

	return withProvider(cmd, func(ctx context.Context, s session) error {
		f, err := s.provider.GetFundamentals(ctx, symbol)
		if err != nil {
			return fmt.Errorf("get fundamentals: %w", err)
		}

		if asJSON {
			return PrintJSON(f)
		}
		PrintHeader("Fundamentals", fmt.Sprintf("Symbol    : %s", symbol))
		if f == nil {
			PrintWarning("No fundamentals reported for " + symbol)
			return nil
		}
		tw := newTable("METRIC", "VALUE")
		for _, row := range []struct {
			name  string
			value *float64
		}{
			{"P/E", f.PE},
			{"P/S", f.PS},
			{"ROE %", f.ROE},
			{"Debt/Equity", f.DebtToEquity},
			{"Growth 5y %", f.Growth5Y},
			{"Profit margin %", f.ProfitMargin},
			{"Beta", f.Beta},
			{"Dividend yield %", f.DividendYield},
		} {
			fmt.Fprintf(tw, "%s\t%s\n", row.name, FormatOptional(row.value))
		}
		tw.Flush()
		return nil
	})
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/external/massive"
	"github.com/wonny/aktietipset/backend/internal/external/memory"
	"github.com/wonny/aktietipset/backend/internal/strategyconfig"
	"github.com/wonny/aktietipset/backend/pkg/config"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

var (
	// Global flags
	offline      bool
	verbose      bool
	asJSON       bool
	cmdTimeout   time.Duration
	strategyFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aktie",
	Short: "AktieTipset - stock recommendations and backtests",
	Long: `AktieTipset Unified CLI

Market data ingestion, scoring and equal-weight backtesting.

Usage:
  go run ./cmd/aktie [command]

Examples:
  go run ./cmd/aktie api
  go run ./cmd/aktie rank --profile aggressive --limit 5
  go run ./cmd/aktie backtest run AAPL MSFT KO --period 3y
  go run ./cmd/aktie market quote AAPL --offline`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the built-in demo universe instead of the Massive API")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().DurationVar(&cmdTimeout, "timeout", 2*time.Minute, "overall command timeout")
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "scoring strategy YAML (default from STRATEGY_CONFIG, else built-in)")
}

// loadConfig loads the environment config and builds the logger
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// loadStrategy loads the strategy named by --strategy or STRATEGY_CONFIG
func loadStrategy(cfg *config.Config, log *logger.Logger) (*strategyconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}
	if path == "" {
		return strategyconfig.Default(), nil
	}

	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy %s: %w", path, err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"path":        path,
		"strategy_id": strategy.Meta.StrategyID,
		"version":     strategy.Meta.Version,
		"hash":        hash[:12],
	}).Info("Strategy loaded")
	return strategy, nil
}

// openProvider returns the demo provider when offline, else the Massive client
func openProvider(cfg *config.Config, log *logger.Logger) (contracts.MarketDataProvider, error) {
	if offline {
		log.Info("Using offline demo universe")
		return memory.Demo(time.Now()), nil
	}

	client, err := massive.NewClientFromConfig(cfg, log)
	if err != nil {
		if errors.Is(err, contracts.ErrConfiguration) {
			return nil, fmt.Errorf("%w (set MASSIVE_API_KEY or pass --offline)", err)
		}
		return nil, err
	}
	return client, nil
}

// commandContext bounds a one-shot command by the --timeout flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cmdTimeout)
}

// session is what a one-shot command runs against
type session struct {
	provider contracts.MarketDataProvider
	config   *config.Config
	strategy *strategyconfig.Config
	logger   *logger.Logger
}

// withProvider runs fn against a freshly opened provider and releases it afterwards
func withProvider(cmd *cobra.Command, fn func(ctx context.Context, s session) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	strategy, err := loadStrategy(cfg, log)
	if err != nil {
		return err
	}

	provider, err := openProvider(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Release(); err != nil {
			log.WithError(err).Warn("Failed to release provider")
		}
	}()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	return fn(ctx, session{provider: provider, config: cfg, strategy: strategy, logger: log})
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aktietipset/backend/internal/api"
	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/internal/scheduler"
	"github.com/wonny/aktietipset/backend/internal/scheduler/jobs"
	"github.com/wonny/aktietipset/backend/pkg/config"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Without MASSIVE_API_KEY the server still starts; market data endpoints
answer 503 until a provider is configured. Use --offline to serve the
built-in demo universe.

Endpoints:
  GET    /health
  GET    /metrics
  GET    /v1/tickers
  GET    /v1/quotes/{symbol}
  GET    /v1/history/{symbol}?period=1y
  GET    /v1/fundamentals/{symbol}
  GET    /v1/rankings?symbols=AAPL,MSFT&profile=balanced&limit=10
  POST   /v1/backtests
  GET    /v1/alerts
  POST   /v1/alerts
  PATCH  /v1/alerts/{id}
  DELETE /v1/alerts/{id}

Example:
  go run ./cmd/aktie api
  go run ./cmd/aktie api --port 8081 --offline`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AktieTipset API Server ===")

	// 1. Load config and logger
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"offline": offline,
	}).Info("Initializing API server")

	// 2. Market data provider, optional
	var provider contracts.MarketDataProvider
	if p, err := openProvider(cfg, log); err != nil {
		if !errors.Is(err, contracts.ErrConfiguration) {
			return err
		}
		log.WithError(err).Warn("Market data provider not configured, market endpoints disabled")
	} else {
		provider = p
	}

	return serveAPI(cfg, provider, log)
}

// serveAPI runs the server until a signal or a serve error. The provider,
// when present, is released on every return path.
func serveAPI(cfg *config.Config, provider contracts.MarketDataProvider, log *logger.Logger) error {
	if provider != nil {
		defer func() {
			if err := provider.Release(); err != nil {
				log.WithError(err).Warn("Failed to release provider")
			}
		}()
	}

	// 3. Services and router
	strategy, err := loadStrategy(cfg, log)
	if err != nil {
		return err
	}
	deps, err := api.NewDependenciesWithStrategy(provider, strategy, cfg.Massive.Concurrency, log)
	if err != nil {
		return err
	}
	router := api.NewRouter(cfg, deps, log)
	server := api.New(cfg, log, router)
	if err := server.Listen(); err != nil {
		return err
	}

	// 4. Background jobs
	var sched *scheduler.Scheduler
	if provider != nil && cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewUniverseWarmJob(provider, cfg.Scheduler.UniverseWarmSchedule, log)); err != nil {
			return fmt.Errorf("register universe warm job: %w", err)
		}
		sched.Start()
	}

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://%s\n", server.Addr())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
		log.Info("Shutting down server...")
	case serveErr = <-errCh:
		if serveErr != nil {
			log.WithError(serveErr).Error("API server stopped unexpectedly")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Server shutdown failed")
	}
	if sched != nil {
		sched.Stop()
	}

	log.Info("Server stopped")
	return serveErr
}

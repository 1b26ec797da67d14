package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridtrader/internal/backtest"
	"gridtrader/internal/config"
	"gridtrader/internal/httpapi"
	"gridtrader/internal/provider"
	"gridtrader/internal/scheduler"
	"gridtrader/internal/store"
	"gridtrader/internal/util"
)

func main() {
	cfgPath := "config/gridtrader.yaml"
	if p := os.Getenv("GRIDTRADER_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Error("opening sqlite store", "path", cfg.Storage.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	prices, cache := buildProvider(cfg, log)
	log.Info("price provider ready", "provider", prices.Name(), "cache", cache != nil)

	engine := backtest.NewEngine(backtest.Options{
		MultiLevelCrossing: cfg.Backtest.MultiLevelCrossing,
	})

	api := httpapi.NewServer(db, db, prices, engine, log)
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, fmt.Sprintf("%d", cfg.Server.Port)),
		Handler:      api.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cache != nil && cfg.Schedule.RefreshCron != "" {
		sched := scheduler.New(cache, cfg.Schedule.RefreshPeriod, cfg.Schedule.RateLimitPerMin, log)
		if err := sched.Register(ctx, cfg.Schedule.RefreshCron); err != nil {
			log.Error("registering refresh schedule", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		log.Info("gridtrader-server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutting down http server", "error", err)
	}
	log.Info("gridtrader-server stopped")
}

// buildProvider assembles the configured price provider, optionally wrapped
// with the Parquet bar cache. The CachedProvider is returned separately so
// the scheduler can drive refreshes; it is nil when caching is disabled.
func buildProvider(cfg *config.Config, log *slog.Logger) (provider.PriceSeriesProvider, *provider.CachedProvider) {
	var upstream provider.PriceSeriesProvider
	switch cfg.Provider.Kind {
	case "alpaca":
		upstream = provider.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL)
	case "synthetic":
		upstream = provider.NewSyntheticProvider(cfg.Provider.SyntheticSeed)
	default:
		upstream = provider.NewYahooProvider(cfg.Provider.Proxy)
	}

	if !cfg.Provider.Cache {
		return upstream, nil
	}
	cache := provider.NewCachedProvider(upstream, store.NewParquetStore(cfg.Storage.DataDir), log)
	return cache, cache
}

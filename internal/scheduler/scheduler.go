// Package scheduler runs the background refresh job that keeps the bar
// cache current for every symbol it has seen.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"gridtrader/internal/provider"
	"gridtrader/internal/util"
)

// Scheduler owns the cron runner and the cache refresh task.
type Scheduler struct {
	cron    *cron.Cron
	cache   *provider.CachedProvider
	period  string
	limiter *util.RateLimiter
	log     *slog.Logger
}

// New creates a Scheduler refreshing the given cache. period is the lookback
// fetched per symbol (e.g. "1mo"); ratePerMin caps upstream fetches during a
// sweep.
func New(cache *provider.CachedProvider, period string, ratePerMin int, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		cache:   cache,
		period:  period,
		limiter: util.NewRateLimiter(ratePerMin),
		log:     log.With("component", "scheduler"),
	}
}

// Register adds the refresh task under the given cron expression (with
// seconds field).
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RefreshAll(ctx) }); err != nil {
		return fmt.Errorf("registering refresh task: %w", err)
	}
	return nil
}

// Start starts the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron runner and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RefreshAll re-fetches recent bars for every cached symbol, rate limited.
// Failures are logged per symbol; one bad symbol does not stop the sweep.
func (s *Scheduler) RefreshAll(ctx context.Context) {
	symbols, err := s.cache.CachedSymbols(ctx)
	if err != nil {
		s.log.Error("listing cached symbols", "error", err)
		return
	}
	if len(symbols) == 0 {
		s.log.Debug("no cached symbols to refresh")
		return
	}

	s.log.Info("refreshing bar cache", "symbols", len(symbols), "period", s.period)
	refreshed := 0
	for _, symbol := range symbols {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warn("refresh sweep cancelled", "error", err)
			return
		}
		if err := s.cache.Refresh(ctx, symbol, s.period); err != nil {
			s.log.Error("refreshing symbol", "symbol", symbol, "error", err)
			continue
		}
		refreshed++
	}
	s.log.Info("bar cache refresh complete", "refreshed", refreshed, "total", len(symbols))
}

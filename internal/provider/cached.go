package provider

import (
	"context"
	"log/slog"
	"time"

	"gridtrader/internal/domain"
	"gridtrader/internal/store"
)

var _ PriceSeriesProvider = (*CachedProvider)(nil)

// CachedProvider wraps an upstream provider with a persistent bar cache.
// Daily bars are served from the cache when present and written through on
// miss. Non-daily intervals bypass the cache entirely.
type CachedProvider struct {
	upstream PriceSeriesProvider
	bars     store.BarStore
	log      *slog.Logger
}

// NewCachedProvider creates a CachedProvider over the given upstream and
// bar store.
func NewCachedProvider(upstream PriceSeriesProvider, bars store.BarStore, log *slog.Logger) *CachedProvider {
	return &CachedProvider{upstream: upstream, bars: bars, log: log.With("provider", upstream.Name())}
}

// Name returns the upstream provider's name.
func (p *CachedProvider) Name() string { return p.upstream.Name() }

// Fetch serves daily bars from the cache when the cached range covers the
// requested period, otherwise fetches upstream and writes the result back.
func (p *CachedProvider) Fetch(ctx context.Context, symbol, period, interval string) ([]domain.PricePoint, error) {
	if interval != "1d" {
		return p.upstream.Fetch(ctx, symbol, period, interval)
	}
	start, err := periodStart(time.Now().UTC(), period)
	if err != nil {
		return nil, err
	}

	cached, err := p.bars.ReadBars(ctx, symbol, start, time.Now().UTC())
	if err == nil && len(cached) > 0 && !cached[0].Date.After(start.AddDate(0, 0, 7)) {
		p.log.Debug("cache hit", "symbol", symbol, "period", period, "bars", len(cached))
		return cached, nil
	}

	points, err := p.upstream.Fetch(ctx, symbol, period, interval)
	if err != nil {
		// Stale cache beats no data.
		if len(cached) > 0 {
			p.log.Warn("upstream fetch failed, serving cached bars", "symbol", symbol, "err", err)
			return cached, nil
		}
		return nil, err
	}
	if werr := p.bars.WriteBars(ctx, symbol, points); werr != nil {
		p.log.Warn("cache write failed", "symbol", symbol, "err", werr)
	}
	return points, nil
}

// CachedSymbols lists the symbols currently present in the cache.
func (p *CachedProvider) CachedSymbols(ctx context.Context) ([]string, error) {
	return p.bars.ListSymbols(ctx)
}

// Refresh re-fetches the given symbol from upstream and writes the bars to
// the cache unconditionally.
func (p *CachedProvider) Refresh(ctx context.Context, symbol, period string) error {
	points, err := p.upstream.Fetch(ctx, symbol, period, "1d")
	if err != nil {
		return err
	}
	return p.bars.WriteBars(ctx, symbol, points)
}

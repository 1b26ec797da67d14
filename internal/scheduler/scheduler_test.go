package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"gridtrader/internal/domain"
	"gridtrader/internal/provider"
	"gridtrader/internal/store"
)

type countingProvider struct {
	fetches int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Fetch(_ context.Context, symbol, period, interval string) ([]domain.PricePoint, error) {
	p.fetches++
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []domain.PricePoint{
		{Date: day, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000},
		{Date: day.AddDate(0, 0, 1), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1100},
	}, nil
}

func TestRefreshAll(t *testing.T) {
	upstream := &countingProvider{}
	cache := provider.NewCachedProvider(upstream, store.NewParquetStore(t.TempDir()), slog.Default())
	ctx := context.Background()

	// Seed the cache with two symbols.
	for _, sym := range []string{"AAPL", "MSFT"} {
		if err := cache.Refresh(ctx, sym, "1mo"); err != nil {
			t.Fatalf("Refresh(%s): %v", sym, err)
		}
	}
	upstream.fetches = 0

	s := New(cache, "1mo", 0, slog.Default())
	s.RefreshAll(ctx)

	if upstream.fetches != 2 {
		t.Errorf("upstream fetches = %d, want 2 (one per cached symbol)", upstream.fetches)
	}
}

func TestRefreshAllEmptyCache(t *testing.T) {
	upstream := &countingProvider{}
	cache := provider.NewCachedProvider(upstream, store.NewParquetStore(t.TempDir()), slog.Default())

	s := New(cache, "1mo", 0, slog.Default())
	s.RefreshAll(context.Background())

	if upstream.fetches != 0 {
		t.Errorf("upstream fetches = %d, want 0 for empty cache", upstream.fetches)
	}
}

func TestRegisterBadSpec(t *testing.T) {
	upstream := &countingProvider{}
	cache := provider.NewCachedProvider(upstream, store.NewParquetStore(t.TempDir()), slog.Default())

	s := New(cache, "1mo", 0, slog.Default())
	if err := s.Register(context.Background(), "not a cron spec"); err == nil {
		t.Error("Register accepted an invalid cron expression")
	}
	if err := s.Register(context.Background(), "0 0 18 * * MON-FRI"); err != nil {
		t.Errorf("Register rejected a valid expression: %v", err)
	}
}

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"gridtrader/internal/domain"
	"gridtrader/internal/store"
)

// stubProvider returns a fixed recent daily series and counts fetches.
type stubProvider struct {
	calls int
	fail  bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(_ context.Context, symbol, period, interval string) ([]domain.PricePoint, error) {
	p.calls++
	if p.fail {
		return nil, fmt.Errorf("%w: stub upstream down", domain.ErrDataUnavailable)
	}
	start, err := periodStart(time.Now().UTC(), period)
	if err != nil {
		return nil, err
	}
	start = start.Truncate(24 * time.Hour)
	var points []domain.PricePoint
	for d := start; len(points) < 10; d = d.AddDate(0, 0, 1) {
		points = append(points, domain.PricePoint{
			Date: d, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000,
		})
	}
	return points, nil
}

func newTestCached(t *testing.T, upstream PriceSeriesProvider) *CachedProvider {
	t.Helper()
	bars := store.NewParquetStore(t.TempDir())
	return NewCachedProvider(upstream, bars, slog.Default())
}

func TestCachedProviderWriteThrough(t *testing.T) {
	stub := &stubProvider{}
	p := newTestCached(t, stub)
	ctx := context.Background()

	first, err := p.Fetch(ctx, "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("Fetch (miss): %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", stub.calls)
	}

	second, err := p.Fetch(ctx, "AAPL", "1mo", "1d")
	if err != nil {
		t.Fatalf("Fetch (hit): %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("upstream calls = %d after second fetch, want 1 (cache hit)", stub.calls)
	}
	if len(second) != len(first) {
		t.Errorf("cached series has %d bars, upstream had %d", len(second), len(first))
	}
}

func TestCachedProviderServesStaleOnUpstreamFailure(t *testing.T) {
	stub := &stubProvider{}
	p := newTestCached(t, stub)
	ctx := context.Background()

	if _, err := p.Fetch(ctx, "AAPL", "1mo", "1d"); err != nil {
		t.Fatalf("Fetch (prime): %v", err)
	}

	// Widen the window so the cached range no longer covers it, forcing an
	// upstream call that now fails.
	stub.fail = true
	got, err := p.Fetch(ctx, "AAPL", "1y", "1d")
	if err != nil {
		t.Fatalf("Fetch (stale fallback): %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected stale cached bars, got none")
	}
}

func TestCachedProviderBypassesNonDaily(t *testing.T) {
	stub := &stubProvider{}
	p := newTestCached(t, stub)

	if _, err := p.Fetch(context.Background(), "AAPL", "1mo", "1wk"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := p.Fetch(context.Background(), "AAPL", "1mo", "1wk"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (non-daily bypasses cache)", stub.calls)
	}
}

func TestCachedProviderRefreshAndSymbols(t *testing.T) {
	stub := &stubProvider{}
	p := newTestCached(t, stub)
	ctx := context.Background()

	if err := p.Refresh(ctx, "MSFT", "1mo"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	symbols, err := p.CachedSymbols(ctx)
	if err != nil {
		t.Fatalf("CachedSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "MSFT" {
		t.Errorf("CachedSymbols = %v, want [MSFT]", symbols)
	}
}

package provider

import (
	"context"
	"errors"
	"testing"

	"gridtrader/internal/domain"
)

func TestSyntheticDeterministic(t *testing.T) {
	p := NewSyntheticProvider(42)
	a, err := p.Fetch(context.Background(), "AAPL", "1y", "1d")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := p.Fetch(context.Background(), "AAPL", "1y", "1d")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(a) != 252 {
		t.Fatalf("len = %d, want 252", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between identical fetches: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSyntheticDistinctSymbols(t *testing.T) {
	p := NewSyntheticProvider(42)
	a, err := p.Fetch(context.Background(), "AAPL", "3mo", "1d")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := p.Fetch(context.Background(), "MSFT", "3mo", "1d")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	same := true
	for i := range a {
		if a[i].Close != b[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different symbols produced identical series")
	}
}

func TestSyntheticSeriesShape(t *testing.T) {
	p := NewSyntheticProvider(7)
	points, err := p.Fetch(context.Background(), "SPY", "6mo", "1d")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	for i, pt := range points {
		if pt.Close <= 0 || pt.Open <= 0 || pt.High <= 0 || pt.Low <= 0 {
			t.Errorf("point %d has non-positive price: %+v", i, pt)
		}
		if i > 0 && !points[i-1].Date.Before(pt.Date) {
			t.Errorf("dates not strictly ascending at %d: %v then %v", i, points[i-1].Date, pt.Date)
		}
	}
	last := points[len(points)-1].Date
	if !last.Equal(syntheticAnchor) {
		t.Errorf("last date = %v, want anchor %v", last, syntheticAnchor)
	}
}

func TestSyntheticBadInput(t *testing.T) {
	p := NewSyntheticProvider(1)
	if _, err := p.Fetch(context.Background(), "", "1y", "1d"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("empty symbol: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := p.Fetch(context.Background(), "AAPL", "7q", "1d"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("bad period: err = %v, want ErrInvalidParameter", err)
	}
}

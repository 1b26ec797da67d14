package backtest

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"gridtrader/internal/domain"
)

// makeSeries builds a daily price series from close prices, one point per
// calendar day starting at the given date.
func makeSeries(start time.Time, closes ...float64) []domain.PricePoint {
	series := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		series[i] = domain.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return series
}

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestRunEndToEndScenario(t *testing.T) {
	// Grid [140, 150, 160], investment 2000, series 140→150→160→150→140.
	// Day 2 crosses up through 150 (sell), day 3 tops out (position already
	// in the last cell, no trade), day 4 sits on the boundary (no trade),
	// day 5 falls back into the lower cell (buy at 140).
	def := domain.GridDefinition{Symbol: "AAPL", LowerPrice: 140, UpperPrice: 160, NumGrids: 2}
	series := makeSeries(testStart, 140, 150, 160, 150, 140)

	sim, err := NewEngine(Options{}).Run(series, def, 2000)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sim.Trades) != 2 {
		t.Fatalf("got %d trades, want 2: %+v", len(sim.Trades), sim.Trades)
	}
	sell, buy := sim.Trades[0], sim.Trades[1]

	if sell.Side != domain.TradeSideSell || sell.Price != 150 {
		t.Errorf("first trade = %s at %g, want sell at 150", sell.Side, sell.Price)
	}
	if !sell.Date.Equal(testStart.AddDate(0, 0, 1)) {
		t.Errorf("sell date = %s, want day 2", sell.Date.Format("2006-01-02"))
	}
	wantShares := 1000.0 / 140.0 // the lower cell's lot, bought at the first close
	if math.Abs(sell.Shares-wantShares) > 1e-9 {
		t.Errorf("sell shares = %g, want %g", sell.Shares, wantShares)
	}
	if math.Abs(sell.Amount-wantShares*150) > 1e-9 {
		t.Errorf("sell amount = %g, want %g", sell.Amount, wantShares*150)
	}

	if buy.Side != domain.TradeSideBuy || buy.Price != 140 {
		t.Errorf("second trade = %s at %g, want buy at 140", buy.Side, buy.Price)
	}
	if !buy.Date.Equal(testStart.AddDate(0, 0, 4)) {
		t.Errorf("buy date = %s, want day 5", buy.Date.Format("2006-01-02"))
	}
	if math.Abs(buy.Amount-1000) > 1e-9 {
		t.Errorf("buy amount = %g, want 1000", buy.Amount)
	}

	if len(sim.DailyValues) != len(series) {
		t.Fatalf("got %d daily values, want %d", len(sim.DailyValues), len(series))
	}
	first := sim.DailyValues[0]
	if math.Abs(first.Value-2000) > 1e-9 {
		t.Errorf("day 1 portfolio value = %g, want 2000", first.Value)
	}
	for i, dv := range sim.DailyValues {
		want := dv.Cash + dv.Shares*dv.Close
		if math.Abs(dv.Value-want) > 1e-9 {
			t.Errorf("day %d value = %g, want cash+shares*close = %g", i+1, dv.Value, want)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	def := domain.GridDefinition{Symbol: "MSFT", LowerPrice: 350, UpperPrice: 400, NumGrids: 5}
	series := makeSeries(testStart, 360, 372, 381, 369, 355, 348, 362, 377, 391, 402, 388, 371)

	engine := NewEngine(Options{})
	a, err := engine.Run(series, def, 15000)
	if err != nil {
		t.Fatalf("Run (first): %v", err)
	}
	b, err := engine.Run(series, def, 15000)
	if err != nil {
		t.Fatalf("Run (second): %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different simulations")
	}
}

func TestRunTradePricesWithinBand(t *testing.T) {
	def := domain.GridDefinition{Symbol: "TSLA", LowerPrice: 200, UpperPrice: 260, NumGrids: 6}
	// Zigzag through and far beyond the band in both directions.
	series := makeSeries(testStart, 230, 250, 280, 310, 240, 195, 150, 210, 265, 220, 199, 245)

	for _, opts := range []Options{{}, {MultiLevelCrossing: true}} {
		sim, err := NewEngine(opts).Run(series, def, 12000)
		if err != nil {
			t.Fatalf("Run(%+v): %v", opts, err)
		}
		for _, tr := range sim.Trades {
			if tr.Price < def.LowerPrice || tr.Price > def.UpperPrice {
				t.Errorf("trade at %g outside band [%g, %g]", tr.Price, def.LowerPrice, def.UpperPrice)
			}
			if tr.Shares <= 0 {
				t.Errorf("trade with non-positive shares: %+v", tr)
			}
			if math.Abs(tr.Amount-tr.Price*tr.Shares) > 1e-9 {
				t.Errorf("trade amount %g != price*shares %g", tr.Amount, tr.Price*tr.Shares)
			}
		}
	}
}

func TestRunNoTradesOutsideBand(t *testing.T) {
	def := domain.GridDefinition{Symbol: "NVDA", LowerPrice: 100, UpperPrice: 120, NumGrids: 2}

	// Entirely above the band: position clamps to the top cell on day one
	// and nothing ever fires.
	above := makeSeries(testStart, 130, 150, 170, 140)
	sim, err := NewEngine(Options{}).Run(above, def, 5000)
	if err != nil {
		t.Fatalf("Run (above): %v", err)
	}
	if len(sim.Trades) != 0 {
		t.Errorf("series above band produced %d trades, want 0", len(sim.Trades))
	}

	// Entirely below the band: clamped to the bottom cell, no buys below.
	below := makeSeries(testStart, 90, 80, 70, 85)
	sim, err = NewEngine(Options{}).Run(below, def, 5000)
	if err != nil {
		t.Fatalf("Run (below): %v", err)
	}
	if len(sim.Trades) != 0 {
		t.Errorf("series below band produced %d trades, want 0", len(sim.Trades))
	}
}

func TestRunGapDaySingleVsMultiLevel(t *testing.T) {
	// Levels [100, 120, 140, 160]; day 2 gaps from the first cell to the
	// last one.
	def := domain.GridDefinition{Symbol: "AMD", LowerPrice: 100, UpperPrice: 160, NumGrids: 3}
	series := makeSeries(testStart, 105, 155)

	single, err := NewEngine(Options{}).Run(series, def, 9000)
	if err != nil {
		t.Fatalf("Run (single): %v", err)
	}
	if len(single.Trades) != 1 {
		t.Fatalf("single-crossing mode emitted %d trades on the gap day, want 1", len(single.Trades))
	}
	if single.Trades[0].Price != 120 {
		t.Errorf("single-crossing sell at %g, want the first boundary 120", single.Trades[0].Price)
	}

	multi, err := NewEngine(Options{MultiLevelCrossing: true}).Run(series, def, 9000)
	if err != nil {
		t.Fatalf("Run (multi): %v", err)
	}
	if len(multi.Trades) != 2 {
		t.Fatalf("multi-crossing mode emitted %d trades on the gap day, want 2", len(multi.Trades))
	}
	if multi.Trades[0].Price != 120 || multi.Trades[1].Price != 140 {
		t.Errorf("multi-crossing sells at %g and %g, want 120 and 140",
			multi.Trades[0].Price, multi.Trades[1].Price)
	}
}

func TestRunCarriesRemainingCrossingToNextDay(t *testing.T) {
	def := domain.GridDefinition{Symbol: "AMD", LowerPrice: 100, UpperPrice: 160, NumGrids: 3}
	// Gap two cells up on day 2, then stay: the second transition completes
	// on day 3 in single-crossing mode.
	series := makeSeries(testStart, 105, 155, 155)

	sim, err := NewEngine(Options{}).Run(series, def, 9000)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sim.Trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(sim.Trades))
	}
	if !sim.Trades[1].Date.Equal(testStart.AddDate(0, 0, 2)) {
		t.Errorf("second sell on %s, want the following day", sim.Trades[1].Date.Format("2006-01-02"))
	}
}

func TestRunInsufficientData(t *testing.T) {
	def := domain.GridDefinition{Symbol: "AAPL", LowerPrice: 140, UpperPrice: 160, NumGrids: 2}
	for _, series := range [][]domain.PricePoint{nil, makeSeries(testStart, 150)} {
		if _, err := NewEngine(Options{}).Run(series, def, 2000); !errors.Is(err, domain.ErrInsufficientData) {
			t.Errorf("Run(%d points) returned %v, want ErrInsufficientData", len(series), err)
		}
	}
}

func TestRunInvalidInput(t *testing.T) {
	def := domain.GridDefinition{Symbol: "AAPL", LowerPrice: 140, UpperPrice: 160, NumGrids: 2}
	engine := NewEngine(Options{})

	// Unsorted dates.
	unsorted := makeSeries(testStart, 140, 150)
	unsorted[1].Date = unsorted[0].Date
	if _, err := engine.Run(unsorted, def, 2000); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("unsorted series: got %v, want ErrInvalidParameter", err)
	}

	// Non-positive price.
	bad := makeSeries(testStart, 140, 150)
	bad[1].Close = -1
	if _, err := engine.Run(bad, def, 2000); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("non-positive price: got %v, want ErrInvalidParameter", err)
	}

	// Non-positive investment.
	if _, err := engine.Run(makeSeries(testStart, 140, 150), def, 0); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("zero investment: got %v, want ErrInvalidParameter", err)
	}

	// Invalid grid definition propagates unchanged.
	badDef := domain.GridDefinition{Symbol: "AAPL", LowerPrice: 160, UpperPrice: 140, NumGrids: 2}
	if _, err := engine.Run(makeSeries(testStart, 140, 150), badDef, 2000); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("invalid grid: got %v, want ErrInvalidParameter", err)
	}
}

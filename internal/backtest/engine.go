// Package backtest replays historical daily price series against grid
// trading strategies and computes performance metrics. Simulation is a pure
// function of its inputs: no randomness, no wall clock, no shared state, so
// independent runs may execute concurrently.
package backtest

import (
	"fmt"

	"gridtrader/internal/domain"
	"gridtrader/internal/grid"
)

// Options controls simulation behaviour.
type Options struct {
	// MultiLevelCrossing emits one trade per grid level crossed when a
	// single day gaps across several levels. When false, at most one level
	// transition is processed per day and the rest carries over to the
	// following days.
	MultiLevelCrossing bool
}

// Simulation is the raw output of one backtest run: the trade ledger and
// the end-of-day portfolio valuations, both in date order.
type Simulation struct {
	Trades      []domain.Trade
	DailyValues []domain.DailyValue
}

// Engine simulates grid trading over a daily price series.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine with the given simulation options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Run simulates the grid strategy over the series in date order, with no
// look-ahead. The starting state mirrors a portfolio already positioned in
// the cell bracketing the first close: that cell's allocation is held as
// shares bought at the first close, the rest stays in cash.
//
// Each day the close price is mapped to the cell bracketing it. Moving up a
// cell sells the current cell's shares at the boundary level crossed; moving
// down buys the lower cell's allocation at its level. Trades therefore only
// ever execute at grid level prices inside the band. Outside the band the
// price keeps being tracked but no trade fires.
func (e *Engine) Run(series []domain.PricePoint, def domain.GridDefinition, investment float64) (*Simulation, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: price series must contain at least 2 points, got %d",
			domain.ErrInsufficientData, len(series))
	}
	if investment <= 0 {
		return nil, fmt.Errorf("%w: investment_amount must be positive, got %g",
			domain.ErrInvalidParameter, investment)
	}
	for i, p := range series {
		if p.Open <= 0 || p.High <= 0 || p.Low <= 0 || p.Close <= 0 {
			return nil, fmt.Errorf("%w: price_series has a non-positive price on %s",
				domain.ErrInvalidParameter, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !p.Date.After(series[i-1].Date) {
			return nil, fmt.Errorf("%w: price_series dates must be strictly increasing at %s",
				domain.ErrInvalidParameter, p.Date.Format("2006-01-02"))
		}
	}

	levels, err := grid.Levels(def)
	if err != nil {
		return nil, err
	}

	alloc := investment / float64(def.NumGrids)
	idx := grid.CellIndex(levels, series[0].Close)
	shares := alloc / series[0].Close
	cash := investment - alloc

	sim := &Simulation{
		Trades:      []domain.Trade{},
		DailyValues: make([]domain.DailyValue, 0, len(series)),
	}

	for _, p := range series {
		target := grid.CellIndex(levels, p.Close)
		for target != idx {
			if target > idx {
				// Price rose into a higher cell: sell the current cell's
				// share lot at the boundary level being crossed.
				sellPrice := levels[idx+1]
				sellShares := alloc / levels[idx]
				if sellShares > shares {
					sellShares = shares
				}
				if sellShares > 0 {
					amount := sellShares * sellPrice
					cash += amount
					shares -= sellShares
					sim.Trades = append(sim.Trades, domain.Trade{
						Date:      p.Date,
						Side:      domain.TradeSideSell,
						Price:     sellPrice,
						Shares:    sellShares,
						Amount:    amount,
						GridLevel: idx + 1,
					})
				}
				idx++
			} else {
				// Price fell into a lower cell: buy that cell's allocation
				// back at its level.
				buyPrice := levels[idx-1]
				buyShares := alloc / buyPrice
				cost := buyShares * buyPrice
				if cost > cash {
					break
				}
				cash -= cost
				shares += buyShares
				sim.Trades = append(sim.Trades, domain.Trade{
					Date:      p.Date,
					Side:      domain.TradeSideBuy,
					Price:     buyPrice,
					Shares:    buyShares,
					Amount:    cost,
					GridLevel: idx - 1,
				})
				idx--
			}
			if !e.opts.MultiLevelCrossing {
				break
			}
		}

		sim.DailyValues = append(sim.DailyValues, domain.DailyValue{
			Date:   p.Date,
			Close:  p.Close,
			Cash:   cash,
			Shares: shares,
			Value:  cash + shares*p.Close,
		})
	}

	return sim, nil
}

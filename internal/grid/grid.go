// Package grid computes grid price levels and per-cell allocations for a
// grid trading strategy. All functions are pure and safe for concurrent use.
package grid

import (
	"fmt"
	"math"

	"gridtrader/internal/domain"
)

// Levels divides the band [def.LowerPrice, def.UpperPrice] into def.NumGrids
// evenly spaced cells and returns the NumGrids+1 boundary prices, inclusive
// of both bounds. Levels are strictly increasing with levels[0] equal to the
// lower bound and levels[len-1] equal to the upper bound. Values keep full
// float precision; round only for display (see RoundLevels).
func Levels(def domain.GridDefinition) ([]float64, error) {
	if def.NumGrids < 2 {
		return nil, fmt.Errorf("%w: num_grids must be at least 2, got %d", domain.ErrInvalidParameter, def.NumGrids)
	}
	if def.LowerPrice <= 0 {
		return nil, fmt.Errorf("%w: lower_price must be positive, got %g", domain.ErrInvalidParameter, def.LowerPrice)
	}
	if def.UpperPrice <= def.LowerPrice {
		return nil, fmt.Errorf("%w: upper_price must be greater than lower_price (%g <= %g)",
			domain.ErrInvalidParameter, def.UpperPrice, def.LowerPrice)
	}

	step := (def.UpperPrice - def.LowerPrice) / float64(def.NumGrids)
	levels := make([]float64, def.NumGrids+1)
	for i := range levels {
		levels[i] = def.LowerPrice + float64(i)*step
	}
	// The top boundary must equal the upper bound exactly, not the sum of
	// accumulated float steps.
	levels[def.NumGrids] = def.UpperPrice
	return levels, nil
}

// Cells derives one GridCell per adjacent level pair, splitting investment
// evenly across the cells. The allocations sum to investment up to float
// rounding.
func Cells(levels []float64, investment float64) ([]domain.GridCell, error) {
	if investment <= 0 {
		return nil, fmt.Errorf("%w: investment_amount must be positive, got %g", domain.ErrInvalidParameter, investment)
	}
	if len(levels) < 2 {
		return nil, fmt.Errorf("%w: levels must contain at least 2 prices, got %d", domain.ErrInvalidParameter, len(levels))
	}

	numCells := len(levels) - 1
	alloc := investment / float64(numCells)
	cells := make([]domain.GridCell, numCells)
	for i := range cells {
		shares := alloc / levels[i]
		cells[i] = domain.GridCell{
			Level:           i,
			BuyPrice:        levels[i],
			SellPrice:       levels[i+1],
			AllocatedCash:   alloc,
			SharesAtBuy:     shares,
			ProfitPotential: shares * (levels[i+1] - levels[i]),
		}
	}
	return cells, nil
}

// CellIndex returns the index of the grid cell bracketing price, treating
// each cell as the half-open interval [levels[i], levels[i+1]). Prices below
// the bottom level clamp to the first cell; prices at or above the top level
// clamp to the last cell.
func CellIndex(levels []float64, price float64) int {
	last := len(levels) - 2
	for i := last; i >= 0; i-- {
		if price >= levels[i] {
			return i
		}
	}
	return 0
}

// Round2 rounds a price to currency precision for presentation. Core
// computations always use the unrounded value so rounding error never
// compounds across dependent calculations.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundLevels returns a presentation copy of levels with each price rounded
// to 2 decimal places. The input slice is not modified.
func RoundLevels(levels []float64) []float64 {
	out := make([]float64, len(levels))
	for i, v := range levels {
		out[i] = Round2(v)
	}
	return out
}

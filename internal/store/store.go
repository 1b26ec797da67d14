// Package store defines storage interfaces for persisting strategies,
// backtest results, and cached price bars.
package store

import (
	"context"
	"time"

	"gridtrader/internal/domain"
)

// StrategyStore persists and retrieves grid strategy definitions.
type StrategyStore interface {
	// CreateStrategy inserts a new strategy and fills in its ID and CreatedAt.
	CreateStrategy(ctx context.Context, s *domain.Strategy) error

	// GetStrategy retrieves a single strategy by ID. Returns an error
	// wrapping domain.ErrNotFound when no such strategy exists.
	GetStrategy(ctx context.Context, id int64) (*domain.Strategy, error)

	// ListStrategies returns all strategies, newest first.
	ListStrategies(ctx context.Context) ([]domain.Strategy, error)
}

// BacktestStore persists and retrieves backtest results.
type BacktestStore interface {
	// SaveBacktest inserts a new backtest result and fills in its ID and
	// CreatedAt.
	SaveBacktest(ctx context.Context, r *domain.BacktestResult) error

	// GetBacktest retrieves a single backtest result by ID. Returns an error
	// wrapping domain.ErrNotFound when no such result exists.
	GetBacktest(ctx context.Context, id int64) (*domain.BacktestResult, error)
}

// BarStore persists and retrieves cached daily OHLCV bars.
type BarStore interface {
	// WriteBars persists a batch of bars for a symbol, merging with any
	// bars already stored.
	WriteBars(ctx context.Context, symbol string, points []domain.PricePoint) error

	// ReadBars returns stored bars for the symbol within [start, end],
	// sorted by date ascending.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error)

	// ListSymbols returns all distinct symbols with stored bars.
	ListSymbols(ctx context.Context) ([]string, error)
}

// Package domain defines the core data types shared across the gridtrader
// platform: price series, grid definitions, strategies, trades, and backtest
// results.
package domain

import "time"

// TradeSide is the direction of an executed grid trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// PricePoint is one daily OHLCV observation for a symbol. Immutable once
// fetched. A price series is an ordered sequence of PricePoint, strictly
// increasing by date.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// GridDefinition describes the price band and resolution of a grid strategy.
// The band [LowerPrice, UpperPrice] is divided into NumGrids cells by
// NumGrids+1 evenly spaced levels.
type GridDefinition struct {
	Symbol     string  `json:"symbol"`
	LowerPrice float64 `json:"lower_price"`
	UpperPrice float64 `json:"upper_price"`
	NumGrids   int     `json:"num_grids"`
}

// GridCell is the interval between two adjacent grid levels, with its own
// cash allocation and share count.
type GridCell struct {
	Level           int     `json:"level"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	AllocatedCash   float64 `json:"allocated_cash"`
	SharesAtBuy     float64 `json:"shares_at_buy"`
	ProfitPotential float64 `json:"profit_potential"`
}

// Strategy is a grid trading strategy definition. Immutable after creation;
// GridLevels and Cells are derived from the definition when the strategy is
// created and kept at full float precision.
type Strategy struct {
	ID               int64          `json:"id"`
	Grid             GridDefinition `json:"grid"`
	InvestmentAmount float64        `json:"investment_amount"`
	GridLevels       []float64      `json:"grid_levels"`
	Cells            []GridCell     `json:"cells"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Trade is one simulated buy or sell emitted by a backtest run. Trades are
// append-only and immutable once emitted.
type Trade struct {
	Date      time.Time `json:"date"`
	Side      TradeSide `json:"type"`
	Price     float64   `json:"price"`
	Shares    float64   `json:"shares"`
	Amount    float64   `json:"amount"`
	GridLevel int       `json:"grid_level"`
}

// DailyValue is the end-of-day portfolio valuation for one day of a backtest
// window. Value = Cash + Shares*Close.
type DailyValue struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Cash   float64   `json:"cash"`
	Shares float64   `json:"shares"`
	Value  float64   `json:"value"`
}

// Metrics summarizes the performance of a backtest run. Derived once from
// the daily valuation series and trade ledger, never mutated afterwards.
type Metrics struct {
	InitialValue        float64 `json:"initial_value"`
	FinalValue          float64 `json:"final_value"`
	TotalReturn         float64 `json:"total_return"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturn    float64 `json:"annualized_return"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	NumTrades           int     `json:"num_trades"`
	BuyTrades           int     `json:"buy_trades"`
	SellTrades          int     `json:"sell_trades"`
	TradeProfit         float64 `json:"trade_profit"`
}

// BacktestPeriod is the simulated window of a backtest. Days counts the
// daily data points inside the window.
type BacktestPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// BacktestResult is the complete, immutable outcome of one backtest run.
type BacktestResult struct {
	ID          int64          `json:"id"`
	StrategyID  int64          `json:"strategy_id"`
	Strategy    Strategy       `json:"strategy"`
	Period      BacktestPeriod `json:"period"`
	Trades      []Trade        `json:"trades"`
	DailyValues []DailyValue   `json:"daily_values"`
	Metrics     Metrics        `json:"metrics"`
	CreatedAt   time.Time      `json:"created_at"`
}

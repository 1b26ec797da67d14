package httpapi

import (
	"time"

	"gridtrader/internal/domain"
	"gridtrader/internal/grid"
)

// ---------------------------------------------------------------------------
// Request types
// ---------------------------------------------------------------------------

// GridRequest is the body for POST /api/grid/calculate and
// POST /api/strategy.
type GridRequest struct {
	Symbol           string  `json:"symbol"`
	LowerPrice       float64 `json:"lower_price"`
	UpperPrice       float64 `json:"upper_price"`
	NumGrids         int     `json:"num_grids"`
	InvestmentAmount float64 `json:"investment_amount"`
}

// BacktestRequest is the body for POST /api/backtest. Dates use the
// "2006-01-02" layout.
type BacktestRequest struct {
	StrategyID int64  `json:"strategy_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// StockResponse is the payload for GET /api/stock/{symbol}.
type StockResponse struct {
	Symbol   string           `json:"symbol"`
	Period   string           `json:"period"`
	Interval string           `json:"interval"`
	Points   []PricePointJSON `json:"points"`
}

// PricePointJSON is one daily bar in API responses.
type PricePointJSON struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// GridResponse is the payload for POST /api/grid/calculate. Prices are
// rounded to cents for presentation.
type GridResponse struct {
	Symbol           string         `json:"symbol"`
	LowerPrice       float64        `json:"lower_price"`
	UpperPrice       float64        `json:"upper_price"`
	NumGrids         int            `json:"num_grids"`
	InvestmentAmount float64        `json:"investment_amount"`
	GridSpacing      float64        `json:"grid_spacing"`
	GridLevels       []float64      `json:"grid_levels"`
	Cells            []GridCellJSON `json:"cells"`
}

// GridCellJSON is one grid cell in API responses, rounded to cents.
type GridCellJSON struct {
	Level           int     `json:"level"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	AllocatedCash   float64 `json:"allocated_cash"`
	SharesAtBuy     float64 `json:"shares_at_buy"`
	ProfitPotential float64 `json:"profit_potential"`
}

// StrategyResponse is the payload for strategy endpoints.
type StrategyResponse struct {
	ID               int64          `json:"id"`
	Symbol           string         `json:"symbol"`
	LowerPrice       float64        `json:"lower_price"`
	UpperPrice       float64        `json:"upper_price"`
	NumGrids         int            `json:"num_grids"`
	InvestmentAmount float64        `json:"investment_amount"`
	GridLevels       []float64      `json:"grid_levels"`
	Cells            []GridCellJSON `json:"cells"`
	CreatedAt        time.Time      `json:"created_at"`
}

// StrategiesResponse is the payload for GET /api/strategies.
type StrategiesResponse struct {
	Strategies []StrategyResponse `json:"strategies"`
}

// BacktestResponse is the payload for backtest endpoints. Trades, daily
// values, and metrics keep full precision; only grid data is rounded.
type BacktestResponse struct {
	ID          int64                 `json:"id"`
	StrategyID  int64                 `json:"strategy_id"`
	Strategy    StrategyResponse      `json:"strategy"`
	Period      domain.BacktestPeriod `json:"period"`
	Trades      []domain.Trade        `json:"trades"`
	DailyValues []domain.DailyValue   `json:"daily_values"`
	Metrics     domain.Metrics        `json:"metrics"`
	CreatedAt   time.Time             `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

func convertPricePoints(points []domain.PricePoint) []PricePointJSON {
	out := make([]PricePointJSON, len(points))
	for i, p := range points {
		out[i] = PricePointJSON{
			Date:   p.Date.Format("2006-01-02"),
			Open:   grid.Round2(p.Open),
			High:   grid.Round2(p.High),
			Low:    grid.Round2(p.Low),
			Close:  grid.Round2(p.Close),
			Volume: p.Volume,
		}
	}
	return out
}

func convertCells(cells []domain.GridCell) []GridCellJSON {
	out := make([]GridCellJSON, len(cells))
	for i, c := range cells {
		out[i] = GridCellJSON{
			Level:           c.Level,
			BuyPrice:        grid.Round2(c.BuyPrice),
			SellPrice:       grid.Round2(c.SellPrice),
			AllocatedCash:   grid.Round2(c.AllocatedCash),
			SharesAtBuy:     c.SharesAtBuy,
			ProfitPotential: grid.Round2(c.ProfitPotential),
		}
	}
	return out
}

func convertStrategy(s *domain.Strategy) StrategyResponse {
	return StrategyResponse{
		ID:               s.ID,
		Symbol:           s.Grid.Symbol,
		LowerPrice:       s.Grid.LowerPrice,
		UpperPrice:       s.Grid.UpperPrice,
		NumGrids:         s.Grid.NumGrids,
		InvestmentAmount: s.InvestmentAmount,
		GridLevels:       grid.RoundLevels(s.GridLevels),
		Cells:            convertCells(s.Cells),
		CreatedAt:        s.CreatedAt,
	}
}

func convertBacktest(r *domain.BacktestResult) BacktestResponse {
	return BacktestResponse{
		ID:          r.ID,
		StrategyID:  r.StrategyID,
		Strategy:    convertStrategy(&r.Strategy),
		Period:      r.Period,
		Trades:      r.Trades,
		DailyValues: r.DailyValues,
		Metrics:     r.Metrics,
		CreatedAt:   r.CreatedAt,
	}
}

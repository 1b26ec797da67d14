// Package gridtrader provides a Go SDK for the gridtrader-server REST API.
package gridtrader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a gridtrader-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ---------------------------------------------------------------------------
// Types (mirror the server's JSON payloads)
// ---------------------------------------------------------------------------

// GridParams describes a grid to calculate or store.
type GridParams struct {
	Symbol           string  `json:"symbol"`
	LowerPrice       float64 `json:"lower_price"`
	UpperPrice       float64 `json:"upper_price"`
	NumGrids         int     `json:"num_grids"`
	InvestmentAmount float64 `json:"investment_amount"`
}

// GridCell is one cell of a calculated grid.
type GridCell struct {
	Level           int     `json:"level"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	AllocatedCash   float64 `json:"allocated_cash"`
	SharesAtBuy     float64 `json:"shares_at_buy"`
	ProfitPotential float64 `json:"profit_potential"`
}

// Grid is a calculated grid layout.
type Grid struct {
	Symbol           string     `json:"symbol"`
	LowerPrice       float64    `json:"lower_price"`
	UpperPrice       float64    `json:"upper_price"`
	NumGrids         int        `json:"num_grids"`
	InvestmentAmount float64    `json:"investment_amount"`
	GridSpacing      float64    `json:"grid_spacing"`
	GridLevels       []float64  `json:"grid_levels"`
	Cells            []GridCell `json:"cells"`
}

// Strategy is a stored grid strategy.
type Strategy struct {
	ID               int64      `json:"id"`
	Symbol           string     `json:"symbol"`
	LowerPrice       float64    `json:"lower_price"`
	UpperPrice       float64    `json:"upper_price"`
	NumGrids         int        `json:"num_grids"`
	InvestmentAmount float64    `json:"investment_amount"`
	GridLevels       []float64  `json:"grid_levels"`
	Cells            []GridCell `json:"cells"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PricePoint is one daily bar.
type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceSeries is the response for a stock data request.
type PriceSeries struct {
	Symbol   string       `json:"symbol"`
	Period   string       `json:"period"`
	Interval string       `json:"interval"`
	Points   []PricePoint `json:"points"`
}

// Trade is one simulated trade from a backtest.
type Trade struct {
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Price     float64   `json:"price"`
	Shares    float64   `json:"shares"`
	Amount    float64   `json:"amount"`
	GridLevel int       `json:"grid_level"`
}

// DailyValue is one day's portfolio valuation from a backtest.
type DailyValue struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Cash   float64   `json:"cash"`
	Shares float64   `json:"shares"`
	Value  float64   `json:"value"`
}

// Metrics summarizes backtest performance.
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

// Period is the simulated window of a backtest.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// BacktestResult is a completed backtest run.
type BacktestResult struct {
	ID          int64        `json:"id"`
	StrategyID  int64        `json:"strategy_id"`
	Strategy    Strategy     `json:"strategy"`
	Period      Period       `json:"period"`
	Trades      []Trade      `json:"trades"`
	DailyValues []DailyValue `json:"daily_values"`
	Metrics     Metrics      `json:"metrics"`
	CreatedAt   time.Time    `json:"created_at"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// GetStock retrieves the daily price series for a symbol. Empty period or
// interval use the server defaults.
func (c *Client) GetStock(ctx context.Context, symbol, period, interval string) (*PriceSeries, error) {
	u := fmt.Sprintf("%s/api/stock/%s", c.baseURL, url.PathEscape(symbol))
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if interval != "" {
		q.Set("interval", interval)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var out PriceSeries
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateGrid computes grid levels and cells without storing anything.
func (c *Client) CalculateGrid(ctx context.Context, params GridParams) (*Grid, error) {
	var out Grid
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/grid/calculate", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStrategy stores a new grid strategy.
func (c *Client) CreateStrategy(ctx context.Context, params GridParams) (*Strategy, error) {
	var out Strategy
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/strategy", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStrategy retrieves a stored strategy by ID.
func (c *Client) GetStrategy(ctx context.Context, id int64) (*Strategy, error) {
	var out Strategy
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/api/strategy/%d", c.baseURL, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStrategies retrieves all stored strategies, newest first.
func (c *Client) ListStrategies(ctx context.Context) ([]Strategy, error) {
	var out struct {
		Strategies []Strategy `json:"strategies"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/strategies", nil, &out); err != nil {
		return nil, err
	}
	return out.Strategies, nil
}

// RunBacktest runs and persists a backtest of the given strategy over
// [startDate, endDate] (both "YYYY-MM-DD", inclusive).
func (c *Client) RunBacktest(ctx context.Context, strategyID int64, startDate, endDate string) (*BacktestResult, error) {
	body := map[string]any{
		"strategy_id": strategyID,
		"start_date":  startDate,
		"end_date":    endDate,
	}
	var out BacktestResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/backtest", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBacktest retrieves a stored backtest result by ID.
func (c *Client) GetBacktest(ctx context.Context, id int64) (*BacktestResult, error) {
	var out BacktestResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/api/backtest/%d", c.baseURL, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes one request, decoding either the success payload into out or
// the server's error body into an APIError.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		if derr := json.NewDecoder(resp.Body).Decode(&errBody); derr != nil || errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

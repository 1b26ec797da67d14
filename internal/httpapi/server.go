// Package httpapi serves the gridtrader REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gridtrader/internal/backtest"
	"gridtrader/internal/domain"
	"gridtrader/internal/grid"
	"gridtrader/internal/provider"
	"gridtrader/internal/store"
)

// Server serves the strategy and backtest HTTP API.
type Server struct {
	strategies store.StrategyStore
	backtests  store.BacktestStore
	prices     provider.PriceSeriesProvider
	engine     *backtest.Engine
	log        *slog.Logger
}

// NewServer creates a Server over the given stores, price provider, and
// backtest engine.
func NewServer(
	strategies store.StrategyStore,
	backtests store.BacktestStore,
	prices provider.PriceSeriesProvider,
	engine *backtest.Engine,
	log *slog.Logger,
) *Server {
	return &Server{
		strategies: strategies,
		backtests:  backtests,
		prices:     prices,
		engine:     engine,
		log:        log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stock/{symbol}", s.handleStock)
	mux.HandleFunc("POST /api/grid/calculate", s.handleGridCalculate)
	mux.HandleFunc("POST /api/strategy", s.handleCreateStrategy)
	mux.HandleFunc("GET /api/strategy/{id}", s.handleGetStrategy)
	mux.HandleFunc("GET /api/strategies", s.handleListStrategies)
	mux.HandleFunc("POST /api/backtest", s.handleRunBacktest)
	mux.HandleFunc("GET /api/backtest/{id}", s.handleGetBacktest)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeDomainError maps a domain error kind to an HTTP status.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDataUnavailable):
		status = http.StatusBadGateway
	default:
		s.log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidParameter, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "1d"
	}

	points, err := s.prices.Fetch(r.Context(), symbol, period, interval)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StockResponse{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Points:   convertPricePoints(points),
	})
}

func (s *Server) handleGridCalculate(w http.ResponseWriter, r *http.Request) {
	var req GridRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp, err := buildGridResponse(req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, *resp)
}

func buildGridResponse(req GridRequest) (*GridResponse, error) {
	def := domain.GridDefinition{
		Symbol:     strings.ToUpper(req.Symbol),
		LowerPrice: req.LowerPrice,
		UpperPrice: req.UpperPrice,
		NumGrids:   req.NumGrids,
	}
	levels, err := grid.Levels(def)
	if err != nil {
		return nil, err
	}
	cells, err := grid.Cells(levels, req.InvestmentAmount)
	if err != nil {
		return nil, err
	}
	return &GridResponse{
		Symbol:           def.Symbol,
		LowerPrice:       def.LowerPrice,
		UpperPrice:       def.UpperPrice,
		NumGrids:         def.NumGrids,
		InvestmentAmount: req.InvestmentAmount,
		GridSpacing:      grid.Round2(levels[1] - levels[0]),
		GridLevels:       grid.RoundLevels(levels),
		Cells:            convertCells(cells),
	}, nil
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req GridRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	def := domain.GridDefinition{
		Symbol:     strings.ToUpper(req.Symbol),
		LowerPrice: req.LowerPrice,
		UpperPrice: req.UpperPrice,
		NumGrids:   req.NumGrids,
	}
	levels, err := grid.Levels(def)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	cells, err := grid.Cells(levels, req.InvestmentAmount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	st := &domain.Strategy{
		Grid:             def,
		InvestmentAmount: req.InvestmentAmount,
		GridLevels:       levels,
		Cells:            cells,
	}
	if err := s.strategies.CreateStrategy(r.Context(), st); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.log.Info("strategy created", "id", st.ID, "symbol", def.Symbol)
	writeJSON(w, http.StatusCreated, convertStrategy(st))
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	st, err := s.strategies.GetStrategy(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertStrategy(st))
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	all, err := s.strategies.ListStrategies(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out := make([]StrategyResponse, len(all))
	for i := range all {
		out[i] = convertStrategy(&all[i])
	}
	writeJSON(w, http.StatusOK, StrategiesResponse{Strategies: out})
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	st, err := s.strategies.GetStrategy(r.Context(), req.StrategyID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	series, err := s.prices.Fetch(r.Context(), st.Grid.Symbol, "max", "1d")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Window is inclusive of both endpoints.
	endExclusive := end.AddDate(0, 0, 1)
	var window []domain.PricePoint
	for _, p := range series {
		if !p.Date.Before(start) && p.Date.Before(endExclusive) {
			window = append(window, p)
		}
	}
	if len(window) == 0 {
		s.writeDomainError(w, fmt.Errorf("%w: no price data for %s between %s and %s",
			domain.ErrInsufficientData, st.Grid.Symbol, req.StartDate, req.EndDate))
		return
	}

	sim, err := s.engine.Run(window, st.Grid, st.InvestmentAmount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics, err := backtest.ComputeMetrics(sim.DailyValues, sim.Trades)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	result := &domain.BacktestResult{
		StrategyID: st.ID,
		Strategy:   *st,
		Period: domain.BacktestPeriod{
			Start: window[0].Date,
			End:   window[len(window)-1].Date,
			Days:  len(sim.DailyValues),
		},
		Trades:      sim.Trades,
		DailyValues: sim.DailyValues,
		Metrics:     metrics,
	}
	if err := s.backtests.SaveBacktest(r.Context(), result); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.log.Info("backtest complete",
		"id", result.ID,
		"strategy_id", st.ID,
		"symbol", st.Grid.Symbol,
		"days", result.Period.Days,
		"trades", metrics.NumTrades)
	writeJSON(w, http.StatusCreated, convertBacktest(result))
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	result, err := s.backtests.GetBacktest(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertBacktest(result))
}

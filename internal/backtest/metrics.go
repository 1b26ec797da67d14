package backtest

import (
	"fmt"
	"math"

	"gridtrader/internal/domain"
)

// tradingDaysPerYear annualizes the Sharpe ratio from daily returns.
const tradingDaysPerYear = 252

// ComputeMetrics derives performance statistics from a backtest's daily
// valuation series and trade ledger. Pure and deterministic.
//
// The annualized return uses (1+r)^(365/days)-1 where days is the number of
// elapsed intervals, len(dailyValues)-1. The Sharpe ratio is the mean of
// daily returns over their sample standard deviation, scaled by sqrt(252),
// and defined as 0 (not NaN) for a flat series.
func ComputeMetrics(dailyValues []domain.DailyValue, trades []domain.Trade) (domain.Metrics, error) {
	if len(dailyValues) < 2 {
		return domain.Metrics{}, fmt.Errorf("%w: need at least 2 daily values to compute metrics, got %d",
			domain.ErrInsufficientData, len(dailyValues))
	}

	days := len(dailyValues) - 1
	initial := dailyValues[0].Value
	final := dailyValues[len(dailyValues)-1].Value
	if initial <= 0 {
		return domain.Metrics{}, fmt.Errorf("%w: initial portfolio value must be positive, got %g",
			domain.ErrInvalidParameter, initial)
	}

	totalReturn := final/initial - 1
	annualized := math.Pow(1+totalReturn, 365/float64(days)) - 1

	// Max drawdown: largest relative decline from the running peak.
	peak := dailyValues[0].Value
	maxDrawdown := 0.0
	for _, dv := range dailyValues {
		if dv.Value > peak {
			peak = dv.Value
		}
		if dd := (peak - dv.Value) / peak; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	sharpe := sharpeRatio(dailyValues)

	var buys, sells int
	var tradeProfit float64
	for _, tr := range trades {
		switch tr.Side {
		case domain.TradeSideBuy:
			buys++
			tradeProfit -= tr.Amount
		case domain.TradeSideSell:
			sells++
			tradeProfit += tr.Amount
		}
	}

	return domain.Metrics{
		InitialValue:        initial,
		FinalValue:          final,
		TotalReturn:         totalReturn,
		TotalReturnPct:      totalReturn * 100,
		AnnualizedReturn:    annualized,
		AnnualizedReturnPct: annualized * 100,
		MaxDrawdown:         maxDrawdown,
		MaxDrawdownPct:      maxDrawdown * 100,
		SharpeRatio:         sharpe,
		NumTrades:           len(trades),
		BuyTrades:           buys,
		SellTrades:          sells,
		TradeProfit:         tradeProfit,
	}, nil
}

// sharpeRatio computes the annualized Sharpe ratio of the daily return
// series, assuming a zero risk-free rate. Returns 0 when there are fewer
// than two returns or the standard deviation is zero.
func sharpeRatio(dailyValues []domain.DailyValue) float64 {
	returns := make([]float64, 0, len(dailyValues)-1)
	for i := 1; i < len(dailyValues); i++ {
		prev := dailyValues[i-1].Value
		if prev != 0 {
			returns = append(returns, dailyValues[i].Value/prev-1)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	// Sample variance, matching the convention of the common statistics
	// libraries this report is compared against.
	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * mean / std
}

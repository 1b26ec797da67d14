package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"gridtrader/internal/domain"
)

// Compile-time interface check.
var _ PriceSeriesProvider = (*AlpacaProvider)(nil)

// AlpacaProvider fetches price series for US equities from the Alpaca
// market-data API.
type AlpacaProvider struct {
	client *marketdata.Client
	log    *slog.Logger
}

// NewAlpacaProvider creates an AlpacaProvider with the given credentials.
// dataURL overrides the default market-data endpoint when non-empty.
func NewAlpacaProvider(apiKey, apiSecret, dataURL string) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaProvider{
		client: marketdata.NewClient(opts),
		log:    slog.Default().With("provider", "alpaca"),
	}
}

// Name returns "alpaca".
func (p *AlpacaProvider) Name() string { return "alpaca" }

// Fetch retrieves bars for symbol over the lookback window implied by
// period, at daily/weekly/monthly resolution per interval.
func (p *AlpacaProvider) Fetch(ctx context.Context, symbol, period, interval string) ([]domain.PricePoint, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", domain.ErrInvalidParameter)
	}

	now := time.Now().UTC()
	start, err := periodStart(now, period)
	if err != nil {
		return nil, err
	}
	tf, err := timeFrame(interval)
	if err != nil {
		return nil, err
	}

	bars, err := p.client.GetBars(strings.ToUpper(symbol), marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     start,
		End:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: alpaca GetBars for %s: %v", domain.ErrDataUnavailable, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: alpaca returned no bars for %s in period %s", domain.ErrDataUnavailable, symbol, period)
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, domain.PricePoint{
			Date:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// timeFrame maps an interval token to the Alpaca bar resolution.
func timeFrame(interval string) (marketdata.TimeFrame, error) {
	switch interval {
	case "", "1d":
		return marketdata.OneDay, nil
	case "1wk":
		return marketdata.NewTimeFrame(1, marketdata.Week), nil
	case "1mo":
		return marketdata.NewTimeFrame(1, marketdata.Month), nil
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("%w: interval %q is not supported", domain.ErrInvalidParameter, interval)
	}
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"gridtrader/internal/domain"
	"gridtrader/internal/util"
)

// Compile-time interface check.
var _ PriceSeriesProvider = (*YahooProvider)(nil)

// yahooBaseURL is the public Yahoo Finance chart endpoint. Overridden in
// tests.
const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches price series from the Yahoo Finance chart API. It
// needs no credentials.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	log     *slog.Logger
}

// NewYahooProvider creates a YahooProvider, optionally routing requests
// through the given HTTP proxy.
func NewYahooProvider(proxyURL string) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		baseURL: yahooBaseURL,
		log:     slog.Default().With("provider", "yahoo"),
	}
}

// Name returns "yahoo".
func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart mirrors the chart API response. OHLCV arrays use pointers
// because Yahoo emits nulls for holidays and halts.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch retrieves the daily series for symbol over the given period. The
// Yahoo chart API accepts the same period and interval tokens this package
// uses, so they pass through unchanged.
func (p *YahooProvider) Fetch(ctx context.Context, symbol, period, interval string) ([]domain.PricePoint, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", domain.ErrInvalidParameter)
	}
	if _, err := periodStart(time.Now(), period); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(period))

	var body []byte
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("yahoo fetch: %w", err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("yahoo read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: yahoo returned status %d for %s", domain.ErrDataUnavailable, resp.StatusCode, symbol)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo: %s", domain.ErrDataUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no data for %s", domain.ErrDataUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	points := make([]domain.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil || quote.Open[i] == nil ||
			quote.High[i] == nil || quote.Low[i] == nil {
			continue // null bar (holiday, halt)
		}
		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		points = append(points, domain.PricePoint{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned only null bars for %s", domain.ErrDataUnavailable, symbol)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

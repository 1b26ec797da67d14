// Package provider supplies historical daily price series from pluggable
// data sources. The concrete implementation is chosen at construction time
// and injected into consumers; there is no global data-source switch.
package provider

import (
	"context"

	"gridtrader/internal/domain"
)

// PriceSeriesProvider fetches an OHLCV price series for a symbol. period and
// interval use the broker-conventional short forms ("1mo", "1y", "max";
// "1d", "1wk"). Implementations return series sorted ascending by date and
// report an unresolvable symbol or period as domain.ErrDataUnavailable.
type PriceSeriesProvider interface {
	Fetch(ctx context.Context, symbol, period, interval string) ([]domain.PricePoint, error)

	// Name returns the provider identifier (e.g. "yahoo", "synthetic").
	Name() string
}

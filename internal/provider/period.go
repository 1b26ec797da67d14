package provider

import (
	"fmt"
	"time"

	"gridtrader/internal/domain"
)

// periodStart maps a period token to the start of the lookback window ending
// at now. Unknown tokens are an ErrInvalidParameter naming the field.
func periodStart(now time.Time, period string) (time.Time, error) {
	switch period {
	case "1d":
		return now.AddDate(0, 0, -1), nil
	case "5d":
		return now.AddDate(0, 0, -5), nil
	case "1mo":
		return now.AddDate(0, -1, 0), nil
	case "3mo":
		return now.AddDate(0, -3, 0), nil
	case "6mo":
		return now.AddDate(0, -6, 0), nil
	case "1y":
		return now.AddDate(-1, 0, 0), nil
	case "2y":
		return now.AddDate(-2, 0, 0), nil
	case "5y":
		return now.AddDate(-5, 0, 0), nil
	case "10y":
		return now.AddDate(-10, 0, 0), nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("%w: period %q is not supported", domain.ErrInvalidParameter, period)
	}
}

// periodPoints maps a period token to the number of daily points a synthetic
// series should contain, approximating trading days.
func periodPoints(period string) (int, error) {
	switch period {
	case "1d":
		return 2, nil
	case "5d":
		return 5, nil
	case "1mo":
		return 21, nil
	case "3mo":
		return 63, nil
	case "6mo":
		return 126, nil
	case "1y":
		return 252, nil
	case "2y":
		return 504, nil
	case "5y":
		return 1260, nil
	case "10y", "max":
		return 2520, nil
	case "ytd":
		return 126, nil
	default:
		return 0, fmt.Errorf("%w: period %q is not supported", domain.ErrInvalidParameter, period)
	}
}

package domain

import "errors"

// Error kinds surfaced by the core. Callers classify failures with
// errors.Is; wrapping messages name the offending field or resource.
var (
	// ErrInvalidParameter marks malformed or out-of-range input. Reported
	// synchronously to the caller, never retried internally.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData marks a price series or valuation series too short
	// or degenerate to operate on. No partial result is returned.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDataUnavailable marks a data provider failure to supply a price
	// series. Propagated unchanged; the core does not retry.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNotFound marks a lookup miss on a store.
	ErrNotFound = errors.New("not found")
)

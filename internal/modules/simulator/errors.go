package simulator

import "errors"

// Simulation errors. All are terminal for the request that triggered them:
// a failed simulation produces no partial result and no ticker is skipped
// silently. Handlers map these onto HTTP status codes.
var (
	// ErrInvalidAllocation marks a malformed request: empty or duplicate
	// tickers, negative allocations, or percentages that do not sum to 100.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrUnknownTicker marks a ticker the price provider has no data for.
	ErrUnknownTicker = errors.New("unknown ticker")

	// ErrDataGap marks a hole in a price series inside the simulation window.
	ErrDataGap = errors.New("price series gap")

	// ErrUpstreamUnavailable marks a price provider failure. Retryable by
	// the caller; the engine never retries internally.
	ErrUpstreamUnavailable = errors.New("price provider unavailable")
)

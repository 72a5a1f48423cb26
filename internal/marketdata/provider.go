package marketdata

import (
	"context"
	"errors"
)

// Bar is one trading day of price history for a symbol. Dividend is the
// cash dividend per share that went ex on this date, 0 on ordinary days.
type Bar struct {
	Date     string  `json:"date" msgpack:"d"` // YYYY-MM-DD
	Close    float64 `json:"close" msgpack:"c"`
	Dividend float64 `json:"dividend" msgpack:"v"`
}

// Provider errors, distinguished so callers can map them onto their own
// error taxonomy (a symbol with no data is a bad request; a provider outage
// is retryable).
var (
	ErrNoData      = errors.New("no price data for symbol")
	ErrUnavailable = errors.New("price history provider unavailable")
)

// Provider returns the daily price history for a symbol over a lookback
// period ("1mo" ... "20y"). Bars are chronological with strictly increasing
// dates and exclude non-trading days.
type Provider interface {
	History(ctx context.Context, symbol, period string) ([]Bar, error)
}

package simulator

import (
	"fmt"
	"strings"
)

// ValidPeriods lists the lookback windows the simulator accepts.
// These match the ranges supported by the price history provider.
var ValidPeriods = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"2y":  true,
	"5y":  true,
	"10y": true,
	"15y": true,
	"20y": true,
}

// Request is the portfolio simulation request body.
type Request struct {
	Tickers               []string  `json:"tickers"`
	Allocations           []float64 `json:"allocations"`
	StartingValue         float64   `json:"starting_value"`
	Period                string    `json:"period"`
	PersonalContributions float64   `json:"personal_contributions"`
	ContributionPeriod    int       `json:"contribution_period"`
	IncludeDividends      bool      `json:"include_dividends"`
	IsDripActive          bool      `json:"is_drip_active"`
	AnnualRiskFreeReturn  float64   `json:"annual_risk_free_return"`
	MaxDataPoints         int       `json:"max_data_points,omitempty"`
}

// Validate checks request shape and normalizes tickers to uppercase.
// Allocation semantics (sum, duplicates) are checked by NormalizeAllocations.
func (r *Request) Validate() error {
	if len(r.Tickers) == 0 {
		return fmt.Errorf("%w: tickers must not be empty", ErrInvalidAllocation)
	}
	if len(r.Tickers) != len(r.Allocations) {
		return fmt.Errorf("%w: tickers and allocations must have the same length", ErrInvalidAllocation)
	}
	if r.StartingValue <= 0 {
		return fmt.Errorf("%w: starting_value must be positive", ErrInvalidAllocation)
	}
	if !ValidPeriods[r.Period] {
		return fmt.Errorf("%w: unsupported period %q", ErrInvalidAllocation, r.Period)
	}
	if r.PersonalContributions < 0 {
		return fmt.Errorf("%w: personal_contributions must not be negative", ErrInvalidAllocation)
	}
	if r.ContributionPeriod < 0 {
		return fmt.Errorf("%w: contribution_period must not be negative", ErrInvalidAllocation)
	}
	if r.MaxDataPoints < 0 {
		return fmt.Errorf("%w: max_data_points must not be negative", ErrInvalidAllocation)
	}
	for i, t := range r.Tickers {
		r.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
		if r.Tickers[i] == "" {
			return fmt.Errorf("%w: empty ticker at index %d", ErrInvalidAllocation, i)
		}
	}
	return nil
}

// Response is the simulation response body. All arrays are parallel,
// chronologically ordered, and downsampled per the sampler contract.
//
// For multi-ticker portfolios, shares is the total share count summed
// across holdings and share_prices is total_value / shares. For a single
// all-equity ticker this degenerates to the actual close price.
type Response struct {
	Dates                 []string  `json:"dates"`
	SharePrices           []float64 `json:"share_prices"`
	Shares                []float64 `json:"shares"`
	TotalValues           []float64 `json:"total_values"`
	AccumulatedDividends  []float64 `json:"accumulated_dividends"`
	AnnualizedReturn      float64   `json:"annualized_return"`
	SharpeRatio           float64   `json:"sharpe_ratio"`
	FinalValue            float64   `json:"final_value"`
	ProjectedAnnualIncome float64   `json:"projected_annual_dividend_income"`
}

// PricePoint is one trading day of a ticker's history, as consumed by the
// engine. Dividend is the cash dividend per share paid on this date (0 on
// non-payment days). Series are owned by the provider and read-only here.
type PricePoint struct {
	Date     string
	Close    float64
	Dividend float64
}

// Holding is a single position. Shares grow through DRIP and contributions;
// AllocationFraction is the normalized starting weight and never changes.
type Holding struct {
	Ticker             string  `json:"ticker"`
	Shares             float64 `json:"shares"`
	AllocationFraction float64 `json:"allocation_fraction"`
}

// PortfolioState is the portfolio snapshot emitted for one trading day.
// Immutable once produced.
type PortfolioState struct {
	Date          string    `json:"date"`
	Holdings      []Holding `json:"holdings"`
	CashDividends float64   `json:"cash_dividends_accrued"`
	TotalValue    float64   `json:"total_value"`
}

// TotalShares sums share counts across holdings.
func (s PortfolioState) TotalShares() float64 {
	var total float64
	for _, h := range s.Holdings {
		total += h.Shares
	}
	return total
}

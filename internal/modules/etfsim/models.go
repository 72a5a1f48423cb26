package etfsim

import (
	"fmt"
	"strings"

	"github.com/amarinov/finance-api/internal/modules/simulator"
)

// Request is the ETF simulation request body. Instead of percentage
// allocations it describes a synthetic fund: per-ticker holdings (share
// counts of the underlyings), the fund's shares outstanding, and how many
// fund shares the user holds at inception.
type Request struct {
	Tickers               []string  `json:"tickers"`
	Holdings              []float64 `json:"holdings"`
	SharesOutstanding     float64   `json:"shares_outstanding"`
	StartingShares        float64   `json:"starting_shares"`
	Period                string    `json:"period"`
	PersonalContributions float64   `json:"personal_contributions"`
	ContributionPeriod    int       `json:"contribution_period"`
	IncludeDividends      bool      `json:"include_dividends"`
	IsDripActive          bool      `json:"is_drip_active"`
	AnnualRiskFreeReturn  float64   `json:"annual_risk_free_return"`
	MaxDataPoints         int       `json:"max_data_points,omitempty"`
}

// Validate checks request shape and normalizes tickers to uppercase.
func (r *Request) Validate() error {
	if len(r.Tickers) == 0 {
		return fmt.Errorf("%w: tickers must not be empty", simulator.ErrInvalidAllocation)
	}
	if len(r.Tickers) != len(r.Holdings) {
		return fmt.Errorf("%w: tickers and holdings must have the same length", simulator.ErrInvalidAllocation)
	}
	for i, h := range r.Holdings {
		if h < 0 {
			return fmt.Errorf("%w: negative holding for %s", simulator.ErrInvalidAllocation, r.Tickers[i])
		}
	}
	if r.SharesOutstanding <= 0 {
		return fmt.Errorf("%w: shares_outstanding must be positive", simulator.ErrInvalidAllocation)
	}
	if r.StartingShares <= 0 {
		return fmt.Errorf("%w: starting_shares must be positive", simulator.ErrInvalidAllocation)
	}
	if !simulator.ValidPeriods[r.Period] {
		return fmt.Errorf("%w: unsupported period %q", simulator.ErrInvalidAllocation, r.Period)
	}
	if r.PersonalContributions < 0 {
		return fmt.Errorf("%w: personal_contributions must not be negative", simulator.ErrInvalidAllocation)
	}
	if r.ContributionPeriod < 0 {
		return fmt.Errorf("%w: contribution_period must not be negative", simulator.ErrInvalidAllocation)
	}
	if r.MaxDataPoints < 0 {
		return fmt.Errorf("%w: max_data_points must not be negative", simulator.ErrInvalidAllocation)
	}
	for i, t := range r.Tickers {
		r.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
		if r.Tickers[i] == "" {
			return fmt.Errorf("%w: empty ticker at index %d", simulator.ErrInvalidAllocation, i)
		}
	}
	return nil
}

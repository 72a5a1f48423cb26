package simulator

import (
	"fmt"
	"math"
)

// allocationSumTolerance absorbs float noise in user-entered percentages
// (e.g. 33.33 + 33.33 + 33.34).
const allocationSumTolerance = 1e-6

// NormalizeAllocations converts percentage allocations into fractions.
//
// Policy: strict-100. The percentages must sum to exactly 100 within
// tolerance; anything else is rejected rather than silently rescaled, so a
// typo like [40, 40] surfaces as an error instead of a quietly different
// portfolio. Returned fractions are parallel to tickers.
func NormalizeAllocations(tickers []string, allocations []float64) ([]float64, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers", ErrInvalidAllocation)
	}
	if len(tickers) != len(allocations) {
		return nil, fmt.Errorf("%w: %d tickers but %d allocations",
			ErrInvalidAllocation, len(tickers), len(allocations))
	}

	seen := make(map[string]bool, len(tickers))
	sum := 0.0
	for i, ticker := range tickers {
		if seen[ticker] {
			return nil, fmt.Errorf("%w: duplicate ticker %s", ErrInvalidAllocation, ticker)
		}
		seen[ticker] = true

		if allocations[i] < 0 {
			return nil, fmt.Errorf("%w: negative allocation %.4f for %s",
				ErrInvalidAllocation, allocations[i], ticker)
		}
		sum += allocations[i]
	}

	if math.Abs(sum-100) > allocationSumTolerance {
		return nil, fmt.Errorf("%w: allocations sum to %.4f, expected 100", ErrInvalidAllocation, sum)
	}

	fractions := make([]float64, len(allocations))
	for i, pct := range allocations {
		fractions[i] = pct / 100
	}
	return fractions, nil
}

// InitialHoldings opens the position: for each ticker, starting shares are
// starting_value x fraction / first trading day close. Fractional shares are
// kept as-is so the value series stays continuous.
func InitialHoldings(tickers []string, fractions []float64, startingValue float64, firstCloses map[string]float64) ([]Holding, error) {
	holdings := make([]Holding, len(tickers))
	for i, ticker := range tickers {
		close, ok := firstCloses[ticker]
		if !ok || close <= 0 {
			return nil, fmt.Errorf("%w: no opening price for %s", ErrDataGap, ticker)
		}
		holdings[i] = Holding{
			Ticker:             ticker,
			Shares:             startingValue * fractions[i] / close,
			AllocationFraction: fractions[i],
		}
	}
	return holdings, nil
}

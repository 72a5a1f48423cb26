package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the trading-day count used for all annualization.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// ChainReturns geometrically compounds sub-period returns into the total
// return across the whole window.
func ChainReturns(returns []float64) float64 {
	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	return total - 1
}

// AnnualizeReturn converts a total compounded return over numDays trading
// days into an annual rate: (1+total)^(252/numDays) - 1.
// A flat window (total = 0) annualizes to exactly 0 for any length.
func AnnualizeReturn(totalReturn float64, numDays int) float64 {
	if numDays <= 0 || totalReturn <= -1 {
		return 0
	}
	return math.Pow(1+totalReturn, float64(TradingDaysPerYear)/float64(numDays)) - 1
}

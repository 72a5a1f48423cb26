package simulator

import (
	"github.com/amarinov/finance-api/pkg/formulas"
)

// Analytics holds the scalar risk/return figures computed from a completed
// state series.
type Analytics struct {
	AnnualizedReturn      float64
	SharpeRatio           float64
	FinalValue            float64
	ProjectedAnnualIncome float64
}

// ComputeAnalytics derives the scalar metrics from the full-resolution state
// series. Must be called before sampling: the daily return series needs
// every trading day.
func ComputeAnalytics(states []PortfolioState, in Input, annualRiskFreeReturn float64) Analytics {
	if len(states) == 0 {
		return Analytics{}
	}

	returns := flowAdjustedReturns(states, in.Schedule)

	totalReturn := formulas.ChainReturns(returns)
	annualized := formulas.AnnualizeReturn(totalReturn, len(returns))

	// Zero volatility (or a window too short to measure it) yields 0
	// rather than NaN.
	sharpe := 0.0
	if s := formulas.CalculateSharpeRatio(returns, annualRiskFreeReturn, formulas.TradingDaysPerYear); s != nil {
		sharpe = *s
	}

	return Analytics{
		AnnualizedReturn:      annualized,
		SharpeRatio:           sharpe,
		FinalValue:            states[len(states)-1].TotalValue,
		ProjectedAnnualIncome: projectedAnnualIncome(states, in),
	}
}

// flowAdjustedReturns computes the per-day return series with contribution
// cash flows stripped out: r_i = (V_i - flow_i) / V_{i-1} - 1, where flow_i
// is the contribution added on day i. Contributions land at the close, so
// chaining these daily returns is exactly the sub-period chain-linking of a
// time-weighted return: the strategy is neither credited nor blamed for cash
// it didn't earn.
func flowAdjustedReturns(states []PortfolioState, schedule ContributionSchedule) []float64 {
	if len(states) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(states)-1)
	for i := 1; i < len(states); i++ {
		prev := states[i-1].TotalValue
		if prev <= 0 {
			returns = append(returns, 0)
			continue
		}
		flow := schedule.AmountOn(i)
		returns = append(returns, (states[i].TotalValue-flow)/prev-1)
	}
	return returns
}

// projectedAnnualIncome estimates the coming year's dividend income from
// the trailing dividend run-rate: per-share dividends observed over the
// trailing min(252, window) trading days, scaled to a full 252-day year,
// times the ending share count, summed across holdings.
func projectedAnnualIncome(states []PortfolioState, in Input) float64 {
	if !in.IncludeDividends || len(states) == 0 {
		return 0
	}

	window := len(states)
	if window > formulas.TradingDaysPerYear {
		window = formulas.TradingDaysPerYear
	}
	cutoff := states[len(states)-window].Date

	last := states[len(states)-1]
	var income float64
	for _, h := range last.Holdings {
		var trailingDPS float64
		for _, p := range in.Series[h.Ticker] {
			if p.Date >= cutoff && p.Dividend > 0 {
				trailingDPS += p.Dividend
			}
		}
		if trailingDPS == 0 {
			continue
		}
		annualDPS := trailingDPS * float64(formulas.TradingDaysPerYear) / float64(window)
		income += h.Shares * annualDPS
	}
	return income
}

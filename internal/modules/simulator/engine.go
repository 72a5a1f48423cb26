package simulator

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Input carries everything the engine needs for one simulation run.
// Fractions are parallel to Tickers and already normalized. Series must be
// fully resolved before the walk starts; the engine never fetches.
type Input struct {
	Tickers          []string
	Fractions        []float64
	StartingValue    float64
	Schedule         ContributionSchedule
	IncludeDividends bool
	DripActive       bool
	Series           map[string][]PricePoint
}

// Engine replays the joint trading-day calendar and produces the day-by-day
// portfolio state series. Single-threaded and deterministic: for a given
// input the output is always byte-identical.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a simulation engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "engine").Logger(),
	}
}

// Run walks the calendar day by day. The per-day order is fixed:
// prices, then dividends, then contributions, then snapshot. Reordering
// these would shift return and Sharpe figures by rounding-level amounts,
// so the order is part of the contract.
//
// Day 0 only opens the position and emits the initial snapshot; dividend
// and contribution logic starts on day 1.
func (e *Engine) Run(in Input) ([]PortfolioState, error) {
	calendar, closes, dividends, err := e.alignSeries(in)
	if err != nil {
		return nil, err
	}

	firstCloses := make(map[string]float64, len(in.Tickers))
	for _, ticker := range in.Tickers {
		if c, ok := closes[ticker][calendar[0]]; ok {
			firstCloses[ticker] = c
		}
	}

	holdings, err := InitialHoldings(in.Tickers, in.Fractions, in.StartingValue, firstCloses)
	if err != nil {
		return nil, err
	}

	states := make([]PortfolioState, 0, len(calendar))
	cashDividends := 0.0

	for i, date := range calendar {
		// 1. Resolve the close per ticker. A missing price anywhere on the
		// joint calendar aborts the whole run; callers re-request rather
		// than resume mid-series.
		dayCloses := make(map[string]float64, len(holdings))
		for _, h := range holdings {
			c, ok := closes[h.Ticker][date]
			if !ok || c <= 0 {
				return nil, fmt.Errorf("%w: %s has no price on %s", ErrDataGap, h.Ticker, date)
			}
			dayCloses[h.Ticker] = c
		}

		if i > 0 {
			// 2. Dividends. DRIP reinvests at the same day's close; otherwise
			// the cash accrues uninvested and is carried forward.
			if in.IncludeDividends {
				for j := range holdings {
					dps := dividends[holdings[j].Ticker][date]
					if dps <= 0 {
						continue
					}
					cash := holdings[j].Shares * dps
					if in.DripActive {
						holdings[j].Shares += cash / dayCloses[holdings[j].Ticker]
					} else {
						cashDividends += cash
					}
				}
			}

			// 3. Contributions, split by current value weight.
			if amount := in.Schedule.AmountOn(i); amount > 0 {
				e.applyContribution(holdings, dayCloses, amount)
			}
		}

		// 4. Snapshot.
		totalValue := cashDividends
		for _, h := range holdings {
			totalValue += h.Shares * dayCloses[h.Ticker]
		}

		snapshot := make([]Holding, len(holdings))
		copy(snapshot, holdings)
		states = append(states, PortfolioState{
			Date:          date,
			Holdings:      snapshot,
			CashDividends: cashDividends,
			TotalValue:    totalValue,
		})
	}

	e.log.Debug().
		Int("trading_days", len(states)).
		Int("tickers", len(in.Tickers)).
		Msg("Simulation completed")

	return states, nil
}

// applyContribution distributes amount across holdings proportionally to
// their current value weight (not the original allocation fraction) and
// converts each slice to shares at that day's close.
func (e *Engine) applyContribution(holdings []Holding, dayCloses map[string]float64, amount float64) {
	var equity float64
	for _, h := range holdings {
		equity += h.Shares * dayCloses[h.Ticker]
	}
	if equity <= 0 {
		return
	}
	for j := range holdings {
		weight := holdings[j].Shares * dayCloses[holdings[j].Ticker] / equity
		holdings[j].Shares += amount * weight / dayCloses[holdings[j].Ticker]
	}
}

// alignSeries builds the joint calendar as the union of all tickers' trading
// days, sorted ascending, plus per-ticker lookup maps. Gaps are not detected
// here; the walk fails on the first date a ticker lacks a price for.
func (e *Engine) alignSeries(in Input) (calendar []string, closes, dividends map[string]map[string]float64, err error) {
	closes = make(map[string]map[string]float64, len(in.Tickers))
	dividends = make(map[string]map[string]float64, len(in.Tickers))
	dateSet := make(map[string]bool)

	for _, ticker := range in.Tickers {
		series := in.Series[ticker]
		if len(series) == 0 {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
		}
		closes[ticker] = make(map[string]float64, len(series))
		dividends[ticker] = make(map[string]float64)
		for _, p := range series {
			closes[ticker][p.Date] = p.Close
			if p.Dividend > 0 {
				dividends[ticker][p.Date] = p.Dividend
			}
			dateSet[p.Date] = true
		}
	}

	calendar = make([]string, 0, len(dateSet))
	for date := range dateSet {
		calendar = append(calendar, date)
	}
	sort.Strings(calendar) // ISO dates sort chronologically

	return calendar, closes, dividends, nil
}

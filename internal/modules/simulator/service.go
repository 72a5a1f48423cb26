package simulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amarinov/finance-api/internal/marketdata"
)

// Service orchestrates one simulation request: provider fetch, allocation
// normalization, the day-by-day walk, analytics, and sampling. Stateless
// across requests; each run is independent and self-contained, so benchmark
// comparisons are just additional invocations.
type Service struct {
	provider         marketdata.Provider
	engine           *Engine
	defaultMaxPoints int
	log              zerolog.Logger
}

// NewService creates a simulation service. defaultMaxPoints caps the
// response series when the request doesn't set max_data_points; 0 leaves
// the series unrestricted.
func NewService(provider marketdata.Provider, defaultMaxPoints int, log zerolog.Logger) *Service {
	return &Service{
		provider:         provider,
		engine:           NewEngine(log),
		defaultMaxPoints: defaultMaxPoints,
		log:              log.With().Str("service", "simulator").Logger(),
	}
}

// Simulate runs the full pipeline for a validated request.
func (s *Service) Simulate(ctx context.Context, req Request) (*Response, error) {
	log := s.log.With().Str("run_id", uuid.NewString()).Logger()

	fractions, err := NormalizeAllocations(req.Tickers, req.Allocations)
	if err != nil {
		return nil, err
	}

	series, err := s.fetchSeries(ctx, req.Tickers, req.Period)
	if err != nil {
		return nil, err
	}

	in := Input{
		Tickers:       req.Tickers,
		Fractions:     fractions,
		StartingValue: req.StartingValue,
		Schedule: ContributionSchedule{
			PeriodDays: req.ContributionPeriod,
			Amount:     req.PersonalContributions,
		},
		IncludeDividends: req.IncludeDividends,
		DripActive:       req.IncludeDividends && req.IsDripActive,
		Series:           series,
	}

	states, err := s.engine.Run(in)
	if err != nil {
		return nil, err
	}

	analytics := ComputeAnalytics(states, in, req.AnnualRiskFreeReturn)

	maxPoints := req.MaxDataPoints
	if maxPoints == 0 {
		maxPoints = s.defaultMaxPoints
	}
	sampled := Downsample(states, maxPoints)

	log.Info().
		Strs("tickers", req.Tickers).
		Str("period", req.Period).
		Int("trading_days", len(states)).
		Int("response_points", len(sampled)).
		Float64("final_value", analytics.FinalValue).
		Msg("Simulation finished")

	return BuildResponse(sampled, analytics), nil
}

// fetchSeries resolves all tickers' histories concurrently and maps
// provider errors onto the simulation error taxonomy.
func (s *Service) fetchSeries(ctx context.Context, tickers []string, period string) (map[string][]PricePoint, error) {
	fetched, err := marketdata.FetchAll(ctx, s.provider, tickers, period)
	if err != nil {
		switch {
		case errors.Is(err, marketdata.ErrNoData):
			return nil, fmt.Errorf("%w: %v", ErrUnknownTicker, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	series := make(map[string][]PricePoint, len(fetched))
	for ticker, bars := range fetched {
		points := make([]PricePoint, len(bars))
		for i, b := range bars {
			points[i] = PricePoint{Date: b.Date, Close: b.Close, Dividend: b.Dividend}
		}
		series[ticker] = points
	}
	return series, nil
}

// BuildResponse flattens a sampled state series plus analytics into the
// wire format: parallel arrays ordered chronologically. Shares is the total
// share count across holdings and share price is derived from it, which
// keeps the pair meaningful for multi-asset portfolios.
func BuildResponse(states []PortfolioState, analytics Analytics) *Response {
	resp := &Response{
		Dates:                 make([]string, len(states)),
		SharePrices:           make([]float64, len(states)),
		Shares:                make([]float64, len(states)),
		TotalValues:           make([]float64, len(states)),
		AccumulatedDividends:  make([]float64, len(states)),
		AnnualizedReturn:      analytics.AnnualizedReturn,
		SharpeRatio:           analytics.SharpeRatio,
		FinalValue:            analytics.FinalValue,
		ProjectedAnnualIncome: analytics.ProjectedAnnualIncome,
	}

	for i, state := range states {
		resp.Dates[i] = state.Date
		resp.TotalValues[i] = state.TotalValue
		resp.AccumulatedDividends[i] = state.CashDividends

		shares := state.TotalShares()
		resp.Shares[i] = shares
		if shares > 0 {
			resp.SharePrices[i] = state.TotalValue / shares
		}
	}

	return resp
}

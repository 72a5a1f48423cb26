package etfsim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amarinov/finance-api/internal/marketdata"
	"github.com/amarinov/finance-api/internal/modules/simulator"
)

// Service simulates holding shares of a synthetic ETF. The fund's NAV per
// share is the basket value divided by shares outstanding; the user's
// position is starting_shares of that fund. The request reduces to a
// portfolio simulation: allocation fractions come from the basket's day-0
// value weights and the starting value is starting_shares x NAV at
// inception, so the engine, analytics, and sampler are shared with the
// portfolio simulator.
type Service struct {
	provider         marketdata.Provider
	engine           *simulator.Engine
	defaultMaxPoints int
	log              zerolog.Logger
}

// NewService creates an ETF simulation service.
func NewService(provider marketdata.Provider, defaultMaxPoints int, log zerolog.Logger) *Service {
	return &Service{
		provider:         provider,
		engine:           simulator.NewEngine(log),
		defaultMaxPoints: defaultMaxPoints,
		log:              log.With().Str("service", "etfsim").Logger(),
	}
}

// Simulate runs the full pipeline for a validated request.
func (s *Service) Simulate(ctx context.Context, req Request) (*simulator.Response, error) {
	log := s.log.With().Str("run_id", uuid.NewString()).Logger()

	series, err := s.fetchSeries(ctx, req.Tickers, req.Period)
	if err != nil {
		return nil, err
	}

	fractions, startingValue, err := reduceToPortfolio(req, series)
	if err != nil {
		return nil, err
	}

	in := simulator.Input{
		Tickers:       req.Tickers,
		Fractions:     fractions,
		StartingValue: startingValue,
		Schedule: simulator.ContributionSchedule{
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

	analytics := simulator.ComputeAnalytics(states, in, req.AnnualRiskFreeReturn)

	maxPoints := req.MaxDataPoints
	if maxPoints == 0 {
		maxPoints = s.defaultMaxPoints
	}
	sampled := simulator.Downsample(states, maxPoints)

	log.Info().
		Strs("tickers", req.Tickers).
		Str("period", req.Period).
		Float64("starting_value", startingValue).
		Float64("final_value", analytics.FinalValue).
		Msg("ETF simulation finished")

	return simulator.BuildResponse(sampled, analytics), nil
}

// reduceToPortfolio derives allocation fractions from the basket's day-0
// value weights and the user's starting value from NAV at inception.
func reduceToPortfolio(req Request, series map[string][]simulator.PricePoint) ([]float64, float64, error) {
	dayZeroValues := make([]float64, len(req.Tickers))
	basketValue := 0.0
	for i, ticker := range req.Tickers {
		points := series[ticker]
		if len(points) == 0 {
			return nil, 0, fmt.Errorf("%w: %s", simulator.ErrUnknownTicker, ticker)
		}
		dayZeroValues[i] = req.Holdings[i] * points[0].Close
		basketValue += dayZeroValues[i]
	}
	if basketValue <= 0 {
		return nil, 0, fmt.Errorf("%w: basket has no value at inception", simulator.ErrInvalidAllocation)
	}

	fractions := make([]float64, len(req.Tickers))
	for i, v := range dayZeroValues {
		fractions[i] = v / basketValue
	}

	nav := basketValue / req.SharesOutstanding
	return fractions, req.StartingShares * nav, nil
}

func (s *Service) fetchSeries(ctx context.Context, tickers []string, period string) (map[string][]simulator.PricePoint, error) {
	fetched, err := marketdata.FetchAll(ctx, s.provider, tickers, period)
	if err != nil {
		switch {
		case errors.Is(err, marketdata.ErrNoData):
			return nil, fmt.Errorf("%w: %v", simulator.ErrUnknownTicker, err)
		default:
			return nil, fmt.Errorf("%w: %v", simulator.ErrUpstreamUnavailable, err)
		}
	}

	series := make(map[string][]simulator.PricePoint, len(fetched))
	for ticker, bars := range fetched {
		points := make([]simulator.PricePoint, len(bars))
		for i, b := range bars {
			points[i] = simulator.PricePoint{Date: b.Date, Close: b.Close, Dividend: b.Dividend}
		}
		series[ticker] = points
	}
	return series, nil
}

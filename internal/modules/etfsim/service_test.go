package etfsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amarinov/finance-api/internal/marketdata"
	"github.com/amarinov/finance-api/internal/modules/simulator"
)

type fakeProvider struct {
	series map[string][]marketdata.Bar
	err    error
}

func (f *fakeProvider) History(ctx context.Context, symbol, period string) ([]marketdata.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	bars, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, marketdata.ErrNoData)
	}
	return bars, nil
}

func flatBars(n int, price float64) []marketdata.Bar {
	bars := make([]marketdata.Bar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			bars[i] = marketdata.Bar{Date: day.Format("2006-01-02"), Close: price}
			i++
		}
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func validRequest() Request {
	return Request{
		Tickers:           []string{"AAA", "BBB"},
		Holdings:          []float64{10, 5},
		SharesOutstanding: 100,
		StartingShares:    50,
		Period:            "1mo",
	}
}

func TestSimulate_StartingValueFromNAV(t *testing.T) {
	// Basket: 10x100 + 5x200 = 2000; NAV = 2000/100 = 20; position = 50
	// fund shares = 1000.
	provider := &fakeProvider{series: map[string][]marketdata.Bar{
		"AAA": flatBars(10, 100),
		"BBB": flatBars(10, 200),
	}}
	svc := NewService(provider, 0, zerolog.Nop())

	resp, err := svc.Simulate(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotEmpty(t, resp.TotalValues)
	assert.InDelta(t, 1000, resp.TotalValues[0], 1e-9)
	assert.InDelta(t, 1000, resp.FinalValue, 1e-9) // flat prices
}

func TestSimulate_TracksBasketAppreciation(t *testing.T) {
	barsA := flatBars(3, 100)
	barsA[1].Close = 110
	barsA[2].Close = 110
	provider := &fakeProvider{series: map[string][]marketdata.Bar{
		"AAA": barsA,
		"BBB": flatBars(3, 200),
	}}
	svc := NewService(provider, 0, zerolog.Nop())

	resp, err := svc.Simulate(context.Background(), validRequest())
	require.NoError(t, err)

	// The AAA leg is half the basket at inception; +10% on it moves the
	// position from 1000 to 1050.
	require.Len(t, resp.TotalValues, 3)
	assert.InDelta(t, 1050, resp.TotalValues[1], 1e-9)
}

func TestSimulate_UnknownTicker(t *testing.T) {
	svc := NewService(&fakeProvider{series: map[string][]marketdata.Bar{}}, 0, zerolog.Nop())

	_, err := svc.Simulate(context.Background(), validRequest())
	assert.ErrorIs(t, err, simulator.ErrUnknownTicker)
}

func TestSimulate_UpstreamFailure(t *testing.T) {
	svc := NewService(&fakeProvider{err: marketdata.ErrUnavailable}, 0, zerolog.Nop())

	_, err := svc.Simulate(context.Background(), validRequest())
	assert.ErrorIs(t, err, simulator.ErrUpstreamUnavailable)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"no tickers", func(r *Request) { r.Tickers = nil; r.Holdings = nil }},
		{"length mismatch", func(r *Request) { r.Holdings = []float64{1} }},
		{"negative holding", func(r *Request) { r.Holdings = []float64{10, -5} }},
		{"zero shares outstanding", func(r *Request) { r.SharesOutstanding = 0 }},
		{"zero starting shares", func(r *Request) { r.StartingShares = 0 }},
		{"bad period", func(r *Request) { r.Period = "7y" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			assert.ErrorIs(t, req.Validate(), simulator.ErrInvalidAllocation)
		})
	}
}

func TestValidate_UppercasesTickers(t *testing.T) {
	req := validRequest()
	req.Tickers = []string{"aaa", "bbb"}
	require.NoError(t, req.Validate())
	assert.Equal(t, []string{"AAA", "BBB"}, req.Tickers)
}

func TestHandleSimulate(t *testing.T) {
	provider := &fakeProvider{series: map[string][]marketdata.Bar{
		"AAA": flatBars(10, 100),
		"BBB": flatBars(10, 200),
	}}
	h := NewHandler(NewService(provider, 150, zerolog.Nop()), zerolog.Nop())

	raw, err := json.Marshal(validRequest())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/tools/etf-simulator", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.HandleSimulate(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp simulator.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, len(resp.Dates), len(resp.TotalValues))
	assert.InDelta(t, 1000, resp.TotalValues[0], 1e-9)
}

func TestHandleSimulate_BadBody(t *testing.T) {
	h := NewHandler(NewService(&fakeProvider{}, 150, zerolog.Nop()), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/tools/etf-simulator", bytes.NewReader([]byte("nope")))
	w := httptest.NewRecorder()
	h.HandleSimulate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amarinov/finance-api/internal/marketdata"
)

// fakeProvider serves canned series keyed by symbol.
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
	for i, date := range tradingDates(n) {
		bars[i] = marketdata.Bar{Date: date, Close: price}
	}
	return bars
}

func newTestHandler(provider marketdata.Provider) *Handler {
	service := NewService(provider, 150, zerolog.Nop())
	return NewHandler(service, zerolog.Nop())
}

func postSimulation(t *testing.T, h *Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/tools/portfolio-simulator", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.HandleSimulate(w, req)
	return w
}

func TestHandleSimulate_SingleTickerScenario(t *testing.T) {
	provider := &fakeProvider{series: map[string][]marketdata.Bar{
		"SPY": flatBars(252, 400),
	}}
	h := newTestHandler(provider)

	w := postSimulation(t, h, Request{
		Tickers:       []string{"SPY"},
		Allocations:   []float64{100},
		StartingValue: 10000,
		Period:        "1y",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	require.NotEmpty(t, resp.TotalValues)
	assert.InDelta(t, 10000, resp.TotalValues[0], 1e-9)
	assert.Equal(t, len(resp.Dates), len(resp.TotalValues))
	assert.Equal(t, len(resp.Dates), len(resp.Shares))
	assert.Equal(t, len(resp.Dates), len(resp.SharePrices))
	assert.Equal(t, len(resp.Dates), len(resp.AccumulatedDividends))
	assert.LessOrEqual(t, len(resp.Dates), 150)
	assert.Equal(t, 0.0, resp.ProjectedAnnualIncome)
	assert.InDelta(t, resp.TotalValues[len(resp.TotalValues)-1], resp.FinalValue, 1e-9)
}

func TestHandleSimulate_SharePriceDegeneratesToClose(t *testing.T) {
	provider := &fakeProvider{series: map[string][]marketdata.Bar{
		"SPY": flatBars(10, 400),
	}}
	h := newTestHandler(provider)

	w := postSimulation(t, h, Request{
		Tickers:       []string{"SPY"},
		Allocations:   []float64{100},
		StartingValue: 10000,
		Period:        "1mo",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	for _, price := range resp.SharePrices {
		assert.InDelta(t, 400, price, 1e-9)
	}
}

func TestHandleSimulate_AccumulatedDividendsAllZeroWhenExcluded(t *testing.T) {
	bars := flatBars(20, 100)
	bars[5].Dividend = 1.25
	provider := &fakeProvider{series: map[string][]marketdata.Bar{"SPY": bars}}
	h := newTestHandler(provider)

	w := postSimulation(t, h, Request{
		Tickers:          []string{"SPY"},
		Allocations:      []float64{100},
		StartingValue:    10000,
		Period:           "1mo",
		IncludeDividends: false,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	for _, acc := range resp.AccumulatedDividends {
		assert.Equal(t, 0.0, acc)
	}
}

func TestHandleSimulate_DripKeepsDividendCashAtZero(t *testing.T) {
	bars := flatBars(20, 100)
	bars[5].Dividend = 1.25
	provider := &fakeProvider{series: map[string][]marketdata.Bar{"SPY": bars}}
	h := newTestHandler(provider)

	w := postSimulation(t, h, Request{
		Tickers:          []string{"SPY"},
		Allocations:      []float64{100},
		StartingValue:    10000,
		Period:           "1mo",
		IncludeDividends: true,
		IsDripActive:     true,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	for _, acc := range resp.AccumulatedDividends {
		assert.Equal(t, 0.0, acc)
	}
	// Reinvestment shows up as a growing share count instead.
	assert.Greater(t, resp.Shares[len(resp.Shares)-1], resp.Shares[0])
}

func TestHandleSimulate_InvalidBody(t *testing.T) {
	h := newTestHandler(&fakeProvider{})

	req := httptest.NewRequest(http.MethodPost, "/tools/portfolio-simulator", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.HandleSimulate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSimulate_ValidationErrors(t *testing.T) {
	h := newTestHandler(&fakeProvider{series: map[string][]marketdata.Bar{
		"SPY": flatBars(10, 100),
		"QQQ": flatBars(10, 100),
	}})

	tests := []struct {
		name string
		req  Request
	}{
		{"no tickers", Request{StartingValue: 1000, Period: "1y"}},
		{"bad period", Request{Tickers: []string{"SPY"}, Allocations: []float64{100}, StartingValue: 1000, Period: "3y"}},
		{"zero starting value", Request{Tickers: []string{"SPY"}, Allocations: []float64{100}, Period: "1y"}},
		{"allocation sum", Request{Tickers: []string{"SPY", "QQQ"}, Allocations: []float64{40, 40}, StartingValue: 1000, Period: "1y"}},
		{"negative contributions", Request{Tickers: []string{"SPY"}, Allocations: []float64{100}, StartingValue: 1000, Period: "1y", PersonalContributions: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postSimulation(t, h, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleSimulate_UnknownTickerIs400(t *testing.T) {
	h := newTestHandler(&fakeProvider{series: map[string][]marketdata.Bar{}})

	w := postSimulation(t, h, Request{
		Tickers:       []string{"ZZZZ"},
		Allocations:   []float64{100},
		StartingValue: 10000,
		Period:        "1y",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSimulate_UpstreamFailureIs502(t *testing.T) {
	h := newTestHandler(&fakeProvider{err: marketdata.ErrUnavailable})

	w := postSimulation(t, h, Request{
		Tickers:       []string{"SPY"},
		Allocations:   []float64{100},
		StartingValue: 10000,
		Period:        "1y",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleSimulate_DataGapIs422(t *testing.T) {
	barsA := flatBars(10, 100)
	barsB := flatBars(10, 100)
	barsB = append(barsB[:4], barsB[5:]...) // hole mid-window

	h := newTestHandler(&fakeProvider{series: map[string][]marketdata.Bar{
		"AAA": barsA,
		"BBB": barsB,
	}})

	w := postSimulation(t, h, Request{
		Tickers:       []string{"AAA", "BBB"},
		Allocations:   []float64{50, 50},
		StartingValue: 10000,
		Period:        "1mo",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleSimulate_TickersUppercased(t *testing.T) {
	provider := &fakeProvider{series: map[string][]marketdata.Bar{
		"SPY": flatBars(10, 100),
	}}
	h := newTestHandler(provider)

	w := postSimulation(t, h, Request{
		Tickers:       []string{"spy"},
		Allocations:   []float64{100},
		StartingValue: 10000,
		Period:        "1mo",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/amarinov/finance-api/internal/marketdata"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches daily price and dividend history from the Yahoo Finance
// chart API. It implements marketdata.Provider.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// NewClientWithBaseURL creates a client pointed at a custom endpoint.
// Used by tests and by deployments that front Yahoo with their own proxy.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// History fetches the daily close series plus dividend events for a symbol
// over the given lookback period ("1mo" ... "20y").
//
// Uses the chart API which returns JSON (more reliable than CSV download).
// Explicit period1/period2 timestamps are sent instead of the range param
// because Yahoo's range enum stops at 10y.
func (c *Client) History(ctx context.Context, symbol, period string) ([]marketdata.Bar, error) {
	now := time.Now().UTC()
	start, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("events", "div")
	params.Add("period1", fmt.Sprintf("%d", start.Unix()))
	params.Add("period2", fmt.Sprintf("%d", now.Unix()))

	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketdata.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", marketdata.ErrNoData, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", marketdata.ErrUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketdata.ErrUnavailable, err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed chart response: %v", marketdata.ErrUnavailable, err)
	}

	if result.Chart.Error != nil {
		if result.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", marketdata.ErrNoData, symbol)
		}
		return nil, fmt.Errorf("%w: %s: %s", marketdata.ErrUnavailable,
			result.Chart.Error.Code, result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", marketdata.ErrNoData, symbol)
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 || len(chartData.Timestamp) == 0 {
		return nil, fmt.Errorf("%w: %s", marketdata.ErrNoData, symbol)
	}

	closes := chartData.Indicators.Quote[0].Close

	// Dividend events keyed by ex-date.
	dividends := make(map[string]float64, len(chartData.Events.Dividends))
	for _, ev := range chartData.Events.Dividends {
		if ev.Amount > 0 {
			dividends[unixDate(ev.Date)] += ev.Amount
		}
	}

	bars := make([]marketdata.Bar, 0, len(chartData.Timestamp))
	for i, ts := range chartData.Timestamp {
		if i >= len(closes) {
			break
		}
		// Yahoo returns zero-filled entries for halted sessions; skip them.
		if closes[i] <= 0 {
			continue
		}
		date := unixDate(ts)
		bars = append(bars, marketdata.Bar{
			Date:     date,
			Close:    closes[i],
			Dividend: dividends[date],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	c.log.Info().
		Str("symbol", symbol).
		Str("period", period).
		Int("count", len(bars)).
		Msg("Fetched price history")

	return bars, nil
}

// periodStart maps a lookback period to its start time relative to now.
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "1mo":
		return now.AddDate(0, -1, 0), nil
	case "3mo":
		return now.AddDate(0, -3, 0), nil
	case "6mo":
		return now.AddDate(0, -6, 0), nil
	case "1y":
		return now.AddDate(-1, 0, 0), nil
	case "2y":
		return now.AddDate(-2, 0, 0), nil
	case "5y":
		return now.AddDate(-5, 0, 0), nil
	case "10y":
		return now.AddDate(-10, 0, 0), nil
	case "15y":
		return now.AddDate(-15, 0, 0), nil
	case "20y":
		return now.AddDate(-20, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported period %q", period)
	}
}

// unixDate formats a unix timestamp as a YYYY-MM-DD date in UTC.
func unixDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

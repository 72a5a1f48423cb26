package yahoo

// chartResponse mirrors the Yahoo Finance v8 chart API payload, reduced to
// the fields the simulator needs: daily closes and dividend events.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]dividendEvent `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// dividendEvent is a single cash dividend: amount per share and the
// ex-dividend date as a unix timestamp.
type dividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

package marketdata

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel provider calls for one request.
const maxConcurrentFetches = 4

// FetchAll resolves the full history for every symbol before returning.
// Symbols are fetched concurrently, but the caller only sees the result
// once all series are complete: the simulation engine needs a fully
// aligned calendar before it starts walking.
//
// The first failure cancels the remaining fetches and fails the whole
// request; there are no partial results.
func FetchAll(ctx context.Context, p Provider, symbols []string, period string) (map[string][]Bar, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	var mu sync.Mutex
	out := make(map[string][]Bar, len(symbols))

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			bars, err := p.History(ctx, symbol, period)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			if len(bars) == 0 {
				return fmt.Errorf("%s: %w", symbol, ErrNoData)
			}
			mu.Lock()
			out[symbol] = bars
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/amarinov/finance-api/internal/database"
)

// CachedProvider wraps a Provider with a sqlite-backed TTL cache keyed by
// (symbol, period). Series are stored as msgpack blobs. Cache failures
// degrade to a pass-through fetch rather than failing the request; only the
// inner provider's errors propagate.
type CachedProvider struct {
	inner Provider
	db    *database.DB
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedProvider creates the cache table if needed and returns the
// caching decorator.
func NewCachedProvider(inner Provider, db *database.DB, ttl time.Duration, log zerolog.Logger) (*CachedProvider, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			symbol     TEXT NOT NULL,
			period     TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			bars       BLOB NOT NULL,
			PRIMARY KEY (symbol, period)
		)
	`)
	if err != nil {
		return nil, err
	}

	return &CachedProvider{
		inner: inner,
		db:    db,
		ttl:   ttl,
		log:   log.With().Str("component", "price_cache").Logger(),
	}, nil
}

// History returns the cached series when fresh, otherwise fetches from the
// inner provider and stores the result.
func (c *CachedProvider) History(ctx context.Context, symbol, period string) ([]Bar, error) {
	if bars, ok := c.lookup(symbol, period); ok {
		c.log.Debug().Str("symbol", symbol).Str("period", period).Msg("Cache hit")
		return bars, nil
	}

	bars, err := c.inner.History(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	c.store(symbol, period, bars)
	return bars, nil
}

func (c *CachedProvider) lookup(symbol, period string) ([]Bar, bool) {
	var fetchedAt int64
	var blob []byte
	err := c.db.QueryRow(
		`SELECT fetched_at, bars FROM price_history WHERE symbol = ? AND period = ?`,
		symbol, period,
	).Scan(&fetchedAt, &blob)
	if err != nil {
		return nil, false
	}

	if time.Since(time.Unix(0, fetchedAt)) > c.ttl {
		return nil, false
	}

	var bars []Bar
	if err := msgpack.Unmarshal(blob, &bars); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to decode cached series")
		return nil, false
	}
	return bars, true
}

func (c *CachedProvider) store(symbol, period string, bars []Bar) {
	blob, err := msgpack.Marshal(bars)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to encode series for cache")
		return
	}

	_, err = c.db.Exec(
		`INSERT INTO price_history (symbol, period, fetched_at, bars)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (symbol, period) DO UPDATE SET fetched_at = excluded.fetched_at, bars = excluded.bars`,
		symbol, period, time.Now().UnixNano(), blob,
	)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to store series in cache")
	}
}

// Prune deletes every cache row older than the TTL. Returns the number of
// rows removed.
func (c *CachedProvider) Prune() (int64, error) {
	cutoff := time.Now().Add(-c.ttl).UnixNano()
	res, err := c.db.Exec(`DELETE FROM price_history WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}

package marketdata

import (
	"github.com/rs/zerolog"
)

// PruneJob removes expired rows from the price history cache. Registered
// with the scheduler so stale series don't accumulate between deploys.
type PruneJob struct {
	cache *CachedProvider
	log   zerolog.Logger
}

// NewPruneJob creates a cache prune job.
func NewPruneJob(cache *CachedProvider, log zerolog.Logger) *PruneJob {
	return &PruneJob{
		cache: cache,
		log:   log.With().Str("job", "price_cache_prune").Logger(),
	}
}

// Name returns the job name for scheduler logging.
func (j *PruneJob) Name() string {
	return "price_cache_prune"
}

// Run deletes expired cache rows.
func (j *PruneJob) Run() error {
	removed, err := j.cache.Prune()
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Pruned expired price history")
	}
	return nil
}

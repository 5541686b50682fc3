package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/config"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/repository"
)

// retentionLockTTL bounds how long one instance holds the scrub lock. A
// crashed holder frees the lock after the TTL instead of blocking forever.
const retentionLockTTL = 10 * time.Minute

// RetentionWorker periodically clears the IP address recorded on old
// quizzes. IPs are kept only to group anonymous quizzes, so they expire
// after the configured retention period.
type RetentionWorker struct {
	quizRepo  *repository.QuizRepository
	rdb       *redis.Client
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
}

// NewRetentionWorker creates a new RetentionWorker.
func NewRetentionWorker(quizRepo *repository.QuizRepository, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *RetentionWorker {
	return &RetentionWorker{
		quizRepo:  quizRepo,
		rdb:       rdb,
		retention: cfg.IPRetention,
		interval:  cfg.RetentionInterval,
		log:       log.With().Str("component", "retention_worker").Logger(),
	}
}

// Start runs the scrub loop until the context is cancelled. One pass runs
// immediately so a long interval cannot delay an overdue scrub.
func (w *RetentionWorker) Start(ctx context.Context) {
	w.log.Info().
		Dur("retention", w.retention).
		Dur("interval", w.interval).
		Msg("RetentionWorker started")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("RetentionWorker stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

// run performs one scrub pass. A Redis lock keeps multiple instances from
// scrubbing concurrently; losing the lock just means another instance is
// already on it.
func (w *RetentionWorker) run(ctx context.Context) {
	lockKey := config.CacheKey.RetentionLockKey()
	acquired, err := w.rdb.SetNX(ctx, lockKey, "1", retentionLockTTL).Result()
	if err != nil {
		w.log.Error().Err(err).Msg("acquire retention lock")
		return
	}
	if !acquired {
		w.log.Debug().Msg("retention lock held elsewhere, skipping pass")
		return
	}
	defer w.rdb.Del(ctx, lockKey)

	cutoff := time.Now().Add(-w.retention)
	scrubbed, err := w.quizRepo.ScrubIPs(ctx, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("scrub quizz IPs")
		return
	}
	if scrubbed > 0 {
		w.log.Info().Int64("scrubbed", scrubbed).Time("cutoff", cutoff).Msg("quizz IPs scrubbed")
	}
}

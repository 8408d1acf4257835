package worker

// redrive.go
// Background goroutine that periodically moves dead-lettered jobs back onto
// their queue. Jobs that have used up their attempts are parked on the
// terminal list dlq:{queue}:dead. Redrive pauses while the mail breaker is
// open so a downed relay is not hammered.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redriveTickInterval = 30 * time.Second
	redriveBatchSize    = 10

	// MaxJobAttempts is the number of times a job is processed before it is
	// parked for manual inspection.
	MaxJobAttempts = 5

	deadSuffix = ":dead"
)

// RedriveConfig holds all dependencies for the redrive goroutine.
type RedriveConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Queues   []string
	Interval time.Duration
}

// StartRedrive launches a background goroutine that ticks every interval
// (30s by default) and redrives up to a batch of entries per queue.
// It respects the context for graceful shutdown.
func StartRedrive(ctx context.Context, cfg RedriveConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = redriveTickInterval
	}
	if len(cfg.Queues) == 0 {
		cfg.Queues = []string{QueueReceipt}
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("redrive: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("redrive: shutting down")
				return
			case <-ticker.C:
				for _, q := range cfg.Queues {
					redriveQueue(ctx, cfg, q)
				}
			}
		}
	}()
}

func redriveQueue(ctx context.Context, cfg RedriveConfig, queue string) {
	dlqKey := DLQPrefix + queue
	for i := 0; i < redriveBatchSize; i++ {
		// Check CB state before each entry, it may trip mid-batch
		if cfg.CB != nil && cfg.CB.State() == infra.BreakerOpen {
			log.Debug().Msg("redrive: circuit breaker is open, skipping")
			return
		}

		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("redrive: failed to pop entry")
			return
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("redrive: dropping unreadable entry")
			continue
		}

		target, exhausted := redriveTarget(entry)
		if exhausted {
			if err := cfg.RDB.LPush(ctx, target, raw).Err(); err != nil {
				log.Error().Err(err).Str("job_id", entry.Job.ID).Msg("redrive: failed to park job")
				continue
			}
			log.Error().
				Str("job_id", entry.Job.ID).
				Int("attempts", entry.Job.Attempts).
				Msg("redrive: max attempts exceeded, job parked")
			continue
		}

		if err := push(ctx, cfg.RDB, target, entry.Job); err != nil {
			log.Error().Err(err).Str("job_id", entry.Job.ID).Msg("redrive: failed to requeue job")
			continue
		}
		log.Info().
			Str("job_id", entry.Job.ID).
			Str("queue", target).
			Int("attempts", entry.Job.Attempts).
			Msg("redrive: job requeued")
	}
}

// redriveTarget returns the list an entry should move to and whether the
// job has exhausted its attempts.
func redriveTarget(entry DLQEntry) (string, bool) {
	if entry.Job.Attempts >= MaxJobAttempts {
		return DLQPrefix + entry.OriginalQueue + deadSuffix, true
	}
	return entry.OriginalQueue, false
}

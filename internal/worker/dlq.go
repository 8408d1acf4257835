package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead-letter list of each queue: dlq:{queue}.
// Jobs that exhausted MaxJobAttempts are parked on dlq:{queue}:dead.
const DLQPrefix = "dlq:"

// DLQEntry is a failed job plus why and when it failed.
type DLQEntry struct {
	OriginalQueue string    `json:"original_queue"`
	Job           Job       `json:"job"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failed_at"`
}

// SendToDLQ pushes a failed job to the queue's dead-letter list. Failures
// are logged; the job is lost only if Redis itself is unreachable.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		Job:           job,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("job_id", job.ID).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_id", job.ID).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQStats counts jobs waiting for redrive and jobs parked for good.
type DLQStats struct {
	Pending int64 `json:"pending"`
	Parked  int64 `json:"parked"`
}

// QueueDLQStats reads both dead-letter lists of queue in one round trip.
func QueueDLQStats(ctx context.Context, rdb *redis.Client, queue string) (DLQStats, error) {
	pipe := rdb.Pipeline()
	pending := pipe.LLen(ctx, DLQPrefix+queue)
	parked := pipe.LLen(ctx, DLQPrefix+queue+deadSuffix)
	if _, err := pipe.Exec(ctx); err != nil {
		return DLQStats{}, err
	}
	return DLQStats{Pending: pending.Val(), Parked: parked.Val()}, nil
}

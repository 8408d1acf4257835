package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	// Allow records one request for key and reports whether it is within the
	// limit, and how long until the current window ends.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// NewLimiter returns a Redis-backed limiter shared by every instance of the
// API, or an in-process one when rdb is nil.
func NewLimiter(rdb *redis.Client, name string, limit int, window time.Duration) Limiter {
	if rdb == nil {
		return newMemoryLimiter(limit, window)
	}
	return &redisLimiter{rdb: rdb, prefix: "ratelimit:" + name + ":", limit: limit, window: window}
}

// RateLimit rejects requests over the limiter's budget with 429, keyed by
// client IP. Limiter failures let the request through.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// ── Redis limiter ─────────────────────────────────────────────────────────────

type redisLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + key
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", k, err)
	}
	return incr.Val() <= int64(l.limit), ttl.Val(), nil
}

// ── In-process limiter ────────────────────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

type memoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*window
	nextSweep time.Time
}

const sweepInterval = 5 * time.Minute

func newMemoryLimiter(limit int, w time.Duration) *memoryLimiter {
	return &memoryLimiter{limit: limit, window: w, now: time.Now, entries: make(map[string]*window)}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	e, ok := l.entries[key]
	if !ok || now.After(e.end) {
		e = &window{end: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.end.Sub(now), nil
}

// sweepLocked drops expired windows so IPs that never return do not
// accumulate.
func (l *memoryLimiter) sweepLocked(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, e := range l.entries {
		if now.After(e.end) {
			delete(l.entries, k)
		}
	}
	l.nextSweep = now.Add(sweepInterval)
}

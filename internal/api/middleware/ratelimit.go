package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prasad-echortech/chat-feature/internal/metrics"
)

const (
	rateLimit  = 60 // requests per window
	rateWindow = time.Minute
)

// RateLimiter throttles per-user request rates with a Redis counter.
// A nil client disables limiting (in-memory deployments).
type RateLimiter struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRateLimiter creates a rate limiter on the shared Redis client.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{client: client, logger: logger}
}

// bucketKey returns the counter key for the fixed window containing now.
// The key rotates every window, so a throttled caller recovers as soon as
// the window rolls over; stale buckets expire on their own.
func bucketKey(id string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", id, now.Unix()/int64(rateWindow.Seconds()))
}

// Middleware enforces the limit. Keyed by authenticated user when present,
// remote address otherwise.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.client == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := GetUserFromContext(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}
		redisKey := bucketKey(key, time.Now())

		pipe := l.client.Pipeline()
		incr := pipe.Incr(r.Context(), redisKey)
		pipe.Expire(r.Context(), redisKey, rateWindow*2)
		if _, err := pipe.Exec(r.Context()); err != nil {
			// Fail open: limiting is protection, not correctness.
			l.logger.Warn().Err(err).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		count := incr.Val()
		remaining := int64(rateLimit) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > rateLimit {
			metrics.RateLimitHits.WithLabelValues(normalizePath(r.URL.Path)).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

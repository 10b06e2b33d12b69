package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"project/backend/config"
)

// Rate limit buckets. The 7-day doubt-session quota is deliberately not a
// bucket here: it is evaluated in-process against the database.
const (
	BucketEmail = "email"
	BucketAuth  = "auth"
	BucketAPI   = "api"
)

type bucketConfig struct {
	Limit  int
	Window time.Duration
}

var buckets = map[string]bucketConfig{
	BucketEmail: {Limit: 2, Window: 10 * time.Second},
	BucketAuth:  {Limit: 5, Window: 60 * time.Second},
	BucketAPI:   {Limit: 20, Window: 10 * time.Second},
}

// RateLimiter gates an action for an identifier against a named bucket.
// Implementations must fail open: when the backing store is unreachable the
// action is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, identifier, bucket string) bool
}

type redisRateLimiter struct {
	rdb *redis.Client
	log *log.Logger
}

type noopRateLimiter struct{}

func (noopRateLimiter) Allow(context.Context, string, string) bool { return true }

// NewRateLimiter returns a Redis-backed sliding-window limiter, or a no-op
// limiter that allows everything when Redis is not configured.
func NewRateLimiter(cfg *config.Config, logger *log.Logger) RateLimiter {
	if cfg.RedisAddr == "" {
		logger.Println("rate limiting disabled: REDIS_ADDR not set")
		return noopRateLimiter{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DialTimeout: 5 * time.Second,
	})

	return &redisRateLimiter{rdb: rdb, log: logger}
}

// Allow implements a sliding-window check over a sorted set keyed by
// (bucket, identifier): drop entries older than the window, record this
// attempt, then compare cardinality against the bucket limit.
func (rl *redisRateLimiter) Allow(ctx context.Context, identifier, bucket string) bool {
	bc, ok := buckets[bucket]
	if !ok {
		return true
	}

	key := fmt.Sprintf("ratelimit:%s:%s", bucket, identifier)
	now := time.Now()
	windowStart := now.Add(-bc.Window)

	pipe := rl.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, bc.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open if Redis is down.
		rl.log.Printf("rate limit check failed for %s: %v", key, err)
		return true
	}

	return card.Val() <= int64(bc.Limit)
}

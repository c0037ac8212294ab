package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/logger"
)

// RedisRateLimiter is a fixed-window limiter shared by every replica. It
// fails open: when Redis errors, requests are allowed.
type RedisRateLimiter struct {
	client     redis.Cmdable
	window     time.Duration
	authMax    int64
	generalMax int64
	log        *logger.Logger
}

func NewRedisRateLimiter(client redis.Cmdable, window time.Duration, authMax, generalMax int64, log *logger.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:     client,
		window:     window,
		authMax:    authMax,
		generalMax: generalMax,
		log:        log,
	}
}

// NewRedisClient connects to addr. It returns nil when Redis cannot be
// pinged so callers can fall back to the in-process limiter.
func NewRedisClient(ctx context.Context, addr, password string, db int, log *logger.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: constants.RedisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.RedisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnf("redis rate limiter unavailable at %s: %v", addr, err)
		_ = client.Close()
		return nil
	}
	log.Infof("redis rate limiter connected: addr=%s", addr)
	return client
}

func (rl *RedisRateLimiter) key(limiterType, ident string) string {
	return "rl:" + limiterType + ":" + strconv.FormatInt(int64(rl.window.Seconds()), 10) + ":" + ident
}

// hit counts one request against key. INCR and TTL run in one transaction;
// a key left without an expiry, whether new or orphaned by an earlier failed
// EXPIRE, gets the window set again. The EXPIRE is detached from the request
// so a client disconnect cannot skip it.
func (rl *RedisRateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return 0, err
	}

	if ttl.Val() < 0 {
		expireCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RedisDialTimeout)
		defer cancel()
		if err := rl.client.Expire(expireCtx, key, rl.window).Err(); err != nil {
			rl.log.WithFields(ctx, logger.Fields{
				"action": "rate_limit_expire_failed",
			}).Warnf("failed to set rate limit window on %s, retrying on next hit: %v", key, err)
		}
	}

	return incr.Val(), nil
}

func (rl *RedisRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiterType := limiterTypeForPath(r.URL.Path)
			limit := rl.generalMax
			if limiterType == limiterTypeAuth {
				limit = rl.authMax
			}

			ctx := r.Context()
			key := rl.key(limiterType, GetClientIP(r))

			val, err := rl.hit(ctx, key)
			if err != nil {
				rl.log.WithFields(ctx, logger.Fields{
					"action": "rate_limit_redis_error",
				}).Warnf("redis rate limit check failed, allowing request: %v", err)
				w.Header().Set("X-RateLimit-Error", "redis-error")
				next.ServeHTTP(w, r)
				return
			}

			if val > limit {
				writeRateLimited(w, r, limiterType)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

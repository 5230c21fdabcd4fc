package handler

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// tokenBucket refills ARGV[3] tokens every ARGV[4] ms up to ARGV[2] and
// takes one. Returns {allowed, tokens_left, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + intervals * refill_tokens)
	last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

const maxLocalBuckets = 4096

// RateLimiter throttles requests per client. With a Redis client the bucket
// is shared across instances; otherwise, and whenever Redis errors, an
// in-process limiter is used.
type RateLimiter struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	log *logger.Logger

	mu    sync.Mutex
	local map[string]*localBucket
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter constructs a RateLimiter. rdb may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log *logger.Logger) *RateLimiter {
	return &RateLimiter{cfg: cfg, rdb: rdb, log: log, local: map[string]*localBucket{}}
}

// Middleware enforces the limit and sets X-RateLimit-* headers.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)
		allowed, remaining, retry := rl.allow(r.Context(), key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// key identifies the client by user id when authenticated, else by IP.
func (rl *RateLimiter) key(r *http.Request) string {
	if c := callerFrom(r); c.UserID != "" {
		return rl.cfg.Prefix + ":user:" + c.UserID
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return rl.cfg.Prefix + ":ip:" + ip
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, int64, time.Duration) {
	if rl.rdb != nil {
		allowed, remaining, retry, err := rl.allowRedis(ctx, key)
		if err == nil {
			return allowed, remaining, retry
		}
		rl.log.Warn("RATELIMIT", fmt.Sprintf("redis unavailable for %s, using local bucket: %v", key, err))
	}
	return rl.allowLocal(key)
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	vals, err := tokenBucket.Run(ctx, rl.rdb, []string{key},
		time.Now().UnixMilli(), rl.cfg.Burst, rl.cfg.RPS, 1000, int64(rl.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected script result %v", vals)
	}
	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, nil
}

func (rl *RateLimiter) allowLocal(key string) (bool, int64, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if len(rl.local) >= maxLocalBuckets {
		for k, b := range rl.local {
			if now.Sub(b.lastSeen) > rl.cfg.TTL {
				delete(rl.local, k)
			}
		}
	}

	b, ok := rl.local[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.local[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	return true, int64(b.limiter.TokensAt(now)), 0
}

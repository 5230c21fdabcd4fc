package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLocalRateLimit(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2, Prefix: "rl", TTL: time.Minute}, nil, logger.Nop())
	h := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234").Code)

	rec := hit(h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1234").Code, "other clients have their own bucket")
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}, nil, logger.Nop())
	h := rl.Middleware(okHandler())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	}
}

func TestRateLimitKeyPrefersUser(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Prefix: "rl"}, nil, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "rl:ip:192.0.2.1", rl.key(req))

	req = req.WithContext(context.WithValue(req.Context(), callerKey, model.Caller{UserID: "u-9"}))
	assert.Equal(t, "rl:user:u-9", rl.key(req))
}

func TestRateLimitFallsBackWhenRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1, Prefix: "rl", TTL: time.Minute}, rdb, logger.Nop())
	h := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)
}

func TestRedisRateLimit(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(context.Background()).Err())

	prefix := "rl-test-" + time.Now().Format("150405.000000")
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2, Prefix: prefix, TTL: time.Minute}, rdb, logger.Nop())
	h := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)
}

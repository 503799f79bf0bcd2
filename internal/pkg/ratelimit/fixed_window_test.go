package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	ctx := context.Background()
	if !limiter.Allow(ctx, "ip-1") {
		t.Fatalf("first request should pass")
	}
	if !limiter.Allow(ctx, "ip-1") {
		t.Fatalf("second request should pass")
	}
	if limiter.Allow(ctx, "ip-1") {
		t.Fatalf("third request should be blocked")
	}
	if !limiter.Allow(ctx, "ip-2") {
		t.Fatalf("other keys keep their own quota")
	}
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow(context.Background(), "ip-1") {
		t.Fatalf("limiter should fail closed on redis errors")
	}
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "", "test:ratelimit", 1, time.Second)
	if err == nil || limiter != nil {
		t.Fatalf("expected constructor error for empty redis addr")
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	limiter, err := NewMemoryLimiter(1, time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ip-1"))
	assert.False(t, limiter.Allow(ctx, "ip-1"))
	assert.True(t, limiter.Allow(ctx, "ip-2"))

	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow(ctx, "ip-1"))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()

	cfg.RateLimit.Enabled = false
	limiter, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, limiter)

	cfg.RateLimit.Enabled = true
	limiter, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryLimiter{}, limiter)

	redis := miniredis.RunT(t)
	cfg.RateLimit.RedisAddr = redis.Addr()
	limiter, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &FixedWindowLimiter{}, limiter)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, err := NewMemoryLimiter(1, time.Minute)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/api/generate", Middleware(limiter, "60"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error": "too many requests"}`, w.Body.String())
}

func TestMiddlewareNilLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", Middleware(nil, ""), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestLimitersRejectSubMillisecondWindow(t *testing.T) {
	for _, window := range []time.Duration{0, -time.Second, 500 * time.Microsecond} {
		_, err := NewMemoryLimiter(1, window)
		assert.Error(t, err, "memory limiter window %s", window)

		_, err = NewRedisFixedWindowLimiter("127.0.0.1:6379", "", "test:ratelimit", 1, window)
		assert.Error(t, err, "redis limiter window %s", window)
	}

	_, err := NewMemoryLimiter(0, time.Minute)
	assert.Error(t, err)

	limiter, err := NewMemoryLimiter(1, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, limiter.Allow(context.Background(), "ip-1"))
}

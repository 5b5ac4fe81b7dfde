package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) Limiter {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "test:ratelimit:"}
}

func TestLimiterAllowsWithinWindow(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := l.Allow(ctx, "client-a", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed, "request %d should pass", i+1)
		require.Equal(t, 3-(i+1), remaining)
	}

	allowed, remaining, _, err := l.Allow(ctx, "client-a", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 0, remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()

	allowed, _, _, err := l.Allow(ctx, "client-a", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _, _, err = l.Allow(ctx, "client-a", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, _, _, err = l.Allow(ctx, "client-b", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed, "other clients keep their own window")
}

func TestLimiterDisabledWithoutClient(t *testing.T) {
	l := Limiter{}
	for i := 0; i < 10; i++ {
		allowed, _, _, err := l.Allow(context.Background(), "anyone", time.Minute, 1)
		require.NoError(t, err)
		require.True(t, allowed)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	h := Handler{
		Limiter: newLimiter(t),
		Config: Config{
			Key:    ClientIPKey,
			Window: time.Minute,
			Max:    1,
		},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := h.Middleware(next)

	req := httptest.NewRequest(http.MethodPost, "/bills", nil)
	req.RemoteAddr = "10.0.0.1:52000"

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestClientIPKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:52000"
	require.Equal(t, "10.0.0.1", ClientIPKey(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	require.Equal(t, "172.16.0.9", ClientIPKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 172.16.0.9")
	require.Equal(t, "203.0.113.7", ClientIPKey(req), "the first forwarded hop wins")
}

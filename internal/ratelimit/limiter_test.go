package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_GetReusesPerKey(t *testing.T) {
	l := NewLimiterWithDefaults()

	a := l.Get("amadeus")
	assert.Same(t, a, l.Get("amadeus"))
	assert.NotSame(t, a, l.Get("sample"))
	assert.Equal(t, 20, a.Burst())
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, l.Allow("amadeus"))
	assert.True(t, l.Allow("amadeus"))
	assert.False(t, l.Allow("amadeus"))
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := NewLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 1})
	require.NoError(t, l.Wait(context.Background(), "k"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "k"))
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	l := NewLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 1})
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")

	now = now.Add(5 * time.Minute)
	l.Allow("10.0.0.2")

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, l.Sweep(10*time.Minute))
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.Allow("10.0.0.2"), "active bucket keeps its state")

	now = now.Add(time.Hour)
	assert.Equal(t, 1, l.Sweep(10*time.Minute))
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_RunSweeperStopsOnCancel(t *testing.T) {
	l := NewLimiterWithDefaults()
	l.Allow("k")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunSweeper(ctx, time.Millisecond, 0)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func newTestEcho(l *Limiter) *echo.Echo {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.Use(Middleware(l))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func request(e *echo.Echo, remoteAddr string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestMiddleware(t *testing.T) {
	e := newTestEcho(NewLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 1}))

	assert.Equal(t, http.StatusOK, request(e, "10.0.0.1:40000", nil))
	assert.Equal(t, http.StatusTooManyRequests, request(e, "10.0.0.1:40001", nil))
	assert.Equal(t, http.StatusOK, request(e, "10.0.0.2:40000", nil))
}

func TestMiddleware_IgnoresForwardingHeaders(t *testing.T) {
	l := NewLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 1})
	e := newTestEcho(l)

	succeeded := 0
	for i := 0; i < 50; i++ {
		spoofed := fmt.Sprintf("203.0.113.%d", i)
		code := request(e, "10.0.0.1:40000", map[string]string{
			echo.HeaderXForwardedFor: spoofed,
			echo.HeaderXRealIP:       spoofed,
		})
		if code == http.StatusOK {
			succeeded++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, l.Len())
}

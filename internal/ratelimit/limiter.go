package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/dharmasatrya/flightoffers/internal/models"
)

type Limit struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultLimit() Limit {
	return Limit{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// Limiter keeps one token bucket per key (an upstream name or a client IP),
// created on first use with the default limit.
type Limiter struct {
	buckets  map[string]*bucket
	mu       sync.RWMutex
	defaults Limit
	now      func() time.Time
}

func NewLimiter(defaults Limit) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		defaults: defaults,
		now:      time.Now,
	}
}

func NewLimiterWithDefaults() *Limiter {
	return NewLimiter(DefaultLimit())
}

func (l *Limiter) Get(key string) *rate.Limiter {
	l.mu.RLock()
	b, exists := l.buckets[key]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		if b, exists = l.buckets[key]; !exists {
			b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.defaults.RequestsPerSecond), l.defaults.BurstSize)}
			l.buckets[key] = b
		}
		l.mu.Unlock()
	}

	b.lastSeen.Store(l.now().UnixNano())
	return b.limiter
}

// Wait blocks until key may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.Get(key).Wait(ctx)
}

func (l *Limiter) Allow(key string) bool {
	return l.Get(key).Allow()
}

func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Sweep drops buckets unused for longer than idle and returns how many were
// removed. A dropped key starts again with a full bucket.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Load() < cutoff {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done. A non-positive
// interval disables sweeping.
func (l *Limiter) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(idle)
		}
	}
}

// Middleware answers 429 to clients that exceed the limit, keyed by
// c.RealIP(). The echo instance must set an IPExtractor that does not trust
// client-supplied forwarding headers, e.g. echo.ExtractIPDirect().
func Middleware(l *Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:   "rate_limited",
					Message: "Too many requests, slow down",
					Code:    http.StatusTooManyRequests,
				})
			}
			return next(c)
		}
	}
}

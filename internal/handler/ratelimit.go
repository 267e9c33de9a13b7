package handler

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// RateLimiter keeps one token bucket per client IP. Idle buckets are evicted
// after ttl.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter creates a RateLimiter allowing burst requests, refilled at limit.
func NewRateLimiter(limit rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateLimiter{
		limit:    limit,
		burst:    burst,
		limiters: cache.New(ttl, 2*ttl),
	}
}

// Allow reports whether key may make a request now.
func (l *RateLimiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := l.limiters.Get(key); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-set on every hit so the expiry slides with activity.
	l.limiters.SetDefault(key, lim)
	return lim.Allow()
}

// Middleware rejects requests over the limit with domain.ErrRateLimited.
// A nil RateLimiter lets everything through.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l != nil && !l.Allow(c.RealIP()) {
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}

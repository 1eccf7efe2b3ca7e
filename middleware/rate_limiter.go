package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller key.
type RateLimiter struct {
	entries map[string]*limiterEntry
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

func NewRateLimiter(r rate.Limit, b int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    r,
		burst:   b,
		ttl:     ttl,
	}
}

// PerMinute builds a limiter allowing n requests a minute with a burst of n.
func PerMinute(n int) *RateLimiter {
	if n <= 0 {
		n = 1
	}
	return NewRateLimiter(rate.Every(time.Minute/time.Duration(n)), n, 5*time.Minute)
}

// GetLimiter returns the limiter for key, creating it on first use.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Cleanup drops limiters idle for longer than the TTL.
func (rl *RateLimiter) Cleanup(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.entries, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every TTL until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.Cleanup(now)
		}
	}
}

// Middleware limits requests per authenticated user, or per client IP when
// no identity is known.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(UserContextKey)
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.GetLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

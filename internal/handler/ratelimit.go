package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter is a token bucket per client key.
type rateLimiter struct {
	mu             sync.Mutex
	maxTokens      int
	refillInterval time.Duration
	now            func() time.Time
	buckets        map[string]*bucket
	lastSweep      time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// newRateLimiter allows maxTokens requests per client, refilling one token
// every refillInterval.
func newRateLimiter(maxTokens int, refillInterval time.Duration) *rateLimiter {
	return &rateLimiter{
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		now:            time.Now,
		buckets:        make(map[string]*bucket),
	}
}

// Allow takes a token for key. When none is left it reports how long until
// the next refill.
func (r *rateLimiter) Allow(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{tokens: r.maxTokens, lastRefill: now}
		r.buckets[key] = b
	}

	if n := int(now.Sub(b.lastRefill) / r.refillInterval); n > 0 {
		b.tokens += n
		if b.tokens > r.maxTokens {
			b.tokens = r.maxTokens
		}
		b.lastRefill = b.lastRefill.Add(time.Duration(n) * r.refillInterval)
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, b.lastRefill.Add(r.refillInterval).Sub(now)
}

// sweep drops buckets that refilled to capacity and then sat idle for another
// full window. It runs at most once per window.
func (r *rateLimiter) sweep(now time.Time) {
	window := time.Duration(r.maxTokens) * r.refillInterval
	if r.lastSweep.IsZero() {
		r.lastSweep = now
		return
	}
	if now.Sub(r.lastSweep) < window {
		return
	}
	r.lastSweep = now
	for key, b := range r.buckets {
		missing := time.Duration(r.maxTokens-b.tokens) * r.refillInterval
		if now.Sub(b.lastRefill) >= missing+window {
			delete(r.buckets, key)
		}
	}
}

// RateLimit caps each client IP at perMinute requests. A non-positive limit
// disables the check.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newRateLimiter(perMinute, time.Minute/time.Duration(perMinute))
	return rateLimitWith(limiter)
}

func rateLimitWith(limiter *rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := limiter.Allow(c.ClientIP())
		if !ok {
			secs := int(retry.Seconds() + 0.999)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

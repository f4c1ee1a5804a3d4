package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to the identity whose bucket it draws from.
type KeyFunc func(*gin.Context) string

// KeyBySessionOrIP keys console requests by session and everything else
// (session creation, ops routes) by client IP.
func KeyBySessionOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if sid := c.Param(SessionParam); sid != "" {
			return "session:" + sid
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token-bucket limiter with one bucket per
// key. Buckets idle for longer than the eviction TTL are dropped every
// sweepEvery lookups.
//
// This type is safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  int
}

const sweepEvery = 5000

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (minimum 1). A nil clock uses the real clock.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc, clock clockwork.Clock) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		clock:    clock,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

// allow takes a token from key's bucket.
func (rl *RateLimiter) allow(key string) bool {
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Sweep before the lookup so a stale bucket is replaced, not refreshed.
	rl.lookups++
	if rl.lookups >= sweepEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of live buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// IsRateBypass reports whether IdempotencyValidator exempted the request.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}

// Handler enforces the limit and answers 429 with Retry-After: 1 when the
// bucket is empty. Idempotent replays are never limited.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || rl.allow(rl.keyFn(c)) {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}

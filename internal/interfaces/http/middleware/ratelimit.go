package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/doclink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter implements fixed-window counters keyed by (rule name, client).
// It is explicitly constructed and injected by the service lifecycle, and
// its memory is bounded: stale windows are expired on every check and the
// oldest bucket is evicted once the hard cap is exceeded.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*rateBucket
	maxBuckets int
	now        func() time.Time
}

type rateBucket struct {
	count   int
	resetAt time.Time
}

// RateRule names one budget: a request ceiling per fixed window
type RateRule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateResult is the structured outcome of a limiter check.
// RetryAfter is whole seconds, the ceiling of the remaining window.
type RateResult struct {
	Allowed    bool
	RetryAfter int
}

// NewRateLimiter creates a new RateLimiter tracking at most maxBuckets windows
func NewRateLimiter(maxBuckets int) *RateLimiter {
	if maxBuckets <= 0 {
		maxBuckets = 10000
	}
	return &RateLimiter{
		buckets:    make(map[string]*rateBucket),
		maxBuckets: maxBuckets,
		now:        time.Now,
	}
}

// Check applies the fixed-window increment-or-reject for one client
func (rl *RateLimiter) Check(rule RateRule, clientID string) RateResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if !now.Before(b.resetAt) {
			delete(rl.buckets, key)
		}
	}
	if len(rl.buckets) >= rl.maxBuckets {
		rl.evictOldestLocked()
	}

	key := rule.Name + ":" + clientID
	b, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &rateBucket{count: 1, resetAt: now.Add(rule.Window)}
		return RateResult{Allowed: true}
	}

	if b.count < rule.Limit {
		b.count++
		return RateResult{Allowed: true}
	}

	remaining := b.resetAt.Sub(now)
	retryAfter := int((remaining + time.Second - 1) / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	return RateResult{Allowed: false, RetryAfter: retryAfter}
}

// evictOldestLocked drops the single bucket closest to its reset
func (rl *RateLimiter) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, b := range rl.buckets {
		if oldestKey == "" || b.resetAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = b.resetAt
		}
	}
	if oldestKey != "" {
		delete(rl.buckets, oldestKey)
	}
}

// ClientKey resolves the rate-limit client identifier: a trusted
// proxy-supplied real-IP header when configured, else the first entry of
// X-Forwarded-For, else a shared "unknown" bucket. Unidentified clients
// sharing one budget is accepted degradation, not a correctness bug.
func ClientKey(c *gin.Context, realIPHeader string) string {
	if realIPHeader != "" {
		if ip := strings.TrimSpace(c.GetHeader(realIPHeader)); ip != "" {
			return ip
		}
	}
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return "unknown"
}

// RateLimit returns a middleware enforcing the given rule
func RateLimit(limiter *RateLimiter, rule RateRule, realIPHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := limiter.Check(rule, ClientKey(c, realIPHeader))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(res.RetryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// IPRateLimiter keeps a sliding window of hit times per client address.
type IPRateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &IPRateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// recent returns the hits of key still inside the window. Caller holds mu.
func (rl *IPRateLimiter) recent(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	hits := rl.hits[key]
	first := sort.Search(len(hits), func(i int) bool { return hits[i].After(cutoff) })
	return hits[first:]
}

// Allow records a hit for key. When the window is full it returns false and
// how long until the oldest hit expires.
func (rl *IPRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	hits := rl.recent(key, now)
	if len(hits) >= rl.limit {
		rl.hits[key] = hits
		return false, hits[0].Add(rl.window).Sub(now)
	}
	rl.hits[key] = append(hits, now)
	return true, 0
}

// Prune forgets addresses whose hits have all expired.
func (rl *IPRateLimiter) Prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key := range rl.hits {
		if len(rl.recent(key, now)) == 0 {
			delete(rl.hits, key)
		}
	}
}

func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(c.ClientIP())
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}

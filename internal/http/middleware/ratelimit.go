package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	clientBucketTTL   = 10 * time.Minute
)

// clientLimiters keeps one token bucket per client IP. A bucket lives for ttl
// after it is created, or until newer clients push it out of the cache; the
// client then starts over with a full bucket.
type clientLimiters struct {
	mu    sync.Mutex
	rps   rate.Limit
	burst int
	cache *expirable.LRU[string, *rate.Limiter]
}

func newClientLimiters(rps float64, burst, size int, ttl time.Duration) *clientLimiters {
	return &clientLimiters{
		rps:   rate.Limit(rps),
		burst: burst,
		cache: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
	}
}

func (l *clientLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.cache.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.cache.Add(ip, lim)
	return lim
}

// RateLimit throttles mutating requests per client IP. rps <= 0 disables it.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	return rateLimit(newClientLimiters(rps, burst, maxTrackedClients, clientBucketTTL))
}

func rateLimit(limiters *clientLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !limiters.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "terlalu banyak permintaan",
				"code":       "rate_limited",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

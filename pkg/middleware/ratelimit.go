package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/localspot/social-core/pkg/response"
)

// RateLimit applies a per-client token bucket keyed by actor id,
// falling back to the remote address for anonymous callers.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = l
		}
		return l
	}
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, _, ok := ActorFrom(c); ok {
			key = id
		}
		if !get(key).Allow() {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

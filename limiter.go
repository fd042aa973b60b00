package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiter throttles requests per client IP. The token bucket refills at
// max/window so sustained traffic converges on the configured rate while a
// full burst of max is allowed up front, matching the fixed-window limits the
// deployment previously ran with closely enough.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPLimiter(max int, window time.Duration) *ipLimiter {
	if max <= 0 || window <= 0 {
		return &ipLimiter{visitors: make(map[string]*rate.Limiter), rate: rate.Inf, burst: 1}
	}
	return &ipLimiter{
		visitors: make(map[string]*rate.Limiter),
		rate:     rate.Every(window / time.Duration(max)),
		burst:    max,
	}
}

func (l *ipLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.visitors[ip]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.visitors[ip] = lim
	}
	return lim
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests, try again later",
			})
			return
		}
		c.Next()
	}
}

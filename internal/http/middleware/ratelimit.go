package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// fixed-window counter for one client IP
type ipWindow struct {
	start time.Time
	count int
}

var (
	ipWindowsMu sync.Mutex
	ipWindows   = make(map[string]*ipWindow)
)

// SimpleRateLimit throttles per client IP with fixed windows held in process
// memory. Only correct for a single instance; multi-instance deployments get
// RedisRateLimit instead.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		ipWindowsMu.Lock()
		w, ok := ipWindows[ip]
		if !ok || now.Sub(w.start) > window {
			ipWindows[ip] = &ipWindow{start: now, count: 1}
			ipWindowsMu.Unlock()
			throttleAllowed.WithLabelValues("ip", c.FullPath()).Inc()
			c.Next()
			return
		}
		w.count++
		count := w.count
		ipWindowsMu.Unlock()

		if count > maxRequests {
			throttleRejected.WithLabelValues("ip", c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		throttleAllowed.WithLabelValues("ip", c.FullPath()).Inc()
		c.Next()
	}
}

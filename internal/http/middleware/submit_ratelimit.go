package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// SubmitRateLimit limits gesture submissions per user (not per IP) using
// Redis. Uses the JWT user id from the context, so the JWT middleware must
// run before this.
func SubmitRateLimit(maxSubmits int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, ok := userIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		key := "submit_rl:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// on Redis error, fail-open but mark the response
			c.Header("X-SubmitRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-SubmitRateLimit-Limit", strconv.Itoa(maxSubmits))
		c.Header("X-SubmitRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxSubmits)-val), 10))

		if val > int64(maxSubmits) {
			throttleRejected.WithLabelValues("player", c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "submission rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		throttleAllowed.WithLabelValues("player", c.FullPath()).Inc()
		c.Next()
	}
}

func max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

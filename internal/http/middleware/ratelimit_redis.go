package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rps_api/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared client used by the Redis-backed
// limiters. With an empty addr or an unreachable server the client stays nil
// and those limiters fail open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, throttling runs fail-open", "addr", addr, "error", err)
		return
	}
	redisClient = client
}

// RedisRateLimit throttles per client IP with fixed windows counted by Redis
// INCR/EXPIRE under throttle:ip:<window_seconds>:<ip>, so the count holds
// across instances. Any Redis error lets the request through.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "throttle:ip:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			throttleRejected.WithLabelValues("ip", c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		throttleAllowed.WithLabelValues("ip", c.FullPath()).Inc()
		c.Next()
	}
}

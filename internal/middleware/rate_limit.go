package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per client in fixed Redis windows.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	log    *slog.Logger
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		log:    log,
	}
}

// NewAuthRateLimiter limits login and registration attempts per client IP.
func NewAuthRateLimiter(redisClient *redis.Client, log *slog.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Minute,
		Limit:     10,
		KeyPrefix: "rate_limit:auth",
	}, log)
}

// NewWriteRateLimiter limits recipe writes and wizard submissions per user.
func NewWriteRateLimiter(redisClient *redis.Client, log *slog.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Minute,
		Limit:     60,
		KeyPrefix: "rate_limit:write",
	}, log)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting.
// Authenticated requests are keyed by user, others by client IP. Only
// mutating requests are counted. Redis failures let the request through.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID, ok := c.Get(ContextUserID); ok {
			key = fmt.Sprintf("user:%v", userID)
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			rl.log.Warn("rate limit check failed", "key", key, "error", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window),
				Code:  "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}

// IsAllowed checks if a request from the given key is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"studyquiz/internal/logger"
	"studyquiz/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Window is the length of one counting window.
const Window = time.Minute

// Counter counts hits per key within a fixed window.
type Counter interface {
	// Hit increments key and returns the new count and the time left in the
	// current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter implements Counter with INCR and EXPIRE.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter connects to redisURL and verifies the connection.
func NewRedisCounter(ctx context.Context, redisURL string) (*RedisCounter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to reach redis: %w", err)
	}
	return &RedisCounter{client: client, prefix: "studyquiz:ratelimit:"}, nil
}

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = r.prefix + key
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return count, window, nil
	}
	if ttl < 0 {
		// Key lost its expiry; restore it so the window cannot last forever.
		_ = r.client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

// Close closes the redis client.
func (r *RedisCounter) Close() error {
	return r.client.Close()
}

// Limit returns middleware allowing at most perWindow requests per client IP
// in each window. Counter errors let the request through.
func Limit(counter Counter, perWindow int, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		if counter == nil || perWindow <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		count, ttl, err := counter.Hit(c.Request.Context(), "generate:"+ip, Window)
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(perWindow))
		remaining := int64(perWindow) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(perWindow) {
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = int(Window.Seconds())
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			log.Info("Rate limit exceeded", "ip", ip, "count", count)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.GenerateQuizResponse{
				Success: false,
				Error:   fmt.Sprintf("Too many requests. Try again in %d seconds", retryAfter),
			})
			return
		}
		c.Next()
	}
}

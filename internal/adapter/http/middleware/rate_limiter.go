package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"todoapi/pkg/config"
	"todoapi/pkg/telemetry"
)

// RateLimiter applies a fixed-window limit per client IP and route.
type RateLimiter struct {
	store   *gocache.Cache
	limits  map[string]config.RateLimit
	metrics *telemetry.AppMetrics
	mu      sync.Mutex
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(limits map[string]config.RateLimit, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		store:   gocache.New(5*time.Minute, 10*time.Minute),
		limits:  limits,
		metrics: metrics,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		limit, ok := rl.limits[c.Request.Method+" "+path]

		if !ok {
			limit, ok = rl.limits["default"]

			if !ok {
				c.Next()
				return
			}
		}

		key := fmt.Sprintf("rate_limit:%s %s:%s", c.Request.Method, path, c.ClientIP())

		allowed, remaining, resetTime := rl.check(key, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(path)
			}

			log.Warn().Str("key", key).Int("limit", limit.Requests).Msg("rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) check(key string, limit config.RateLimit) (bool, int, time.Time) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cached, found := rl.store.Get(key); found {
		entry := cached.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= limit.Requests {
				return false, 0, entry.ResetTime
			}

			entry.Count++
			rl.store.Set(key, entry, gocache.DefaultExpiration)

			return true, limit.Requests - entry.Count, entry.ResetTime
		}
	}

	resetTime := now.Add(limit.Window)
	rl.store.Set(key, rateLimitEntry{Count: 1, ResetTime: resetTime}, limit.Window)

	return true, limit.Requests - 1, resetTime
}

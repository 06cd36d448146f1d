package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"todoapi/internal/core/port"
	"todoapi/pkg/config"
	"todoapi/pkg/telemetry"
)

const cacheKeyPrefix = "response:"

// ResponseCache serves recent GET responses out of a CacheRepository and
// drops everything it holds whenever a write goes through, so reads after
// a mutation never see a page older than the configured TTL anyway.
type ResponseCache struct {
	cache   port.CacheRepository
	configs map[string]config.ResponseCache
	metrics *telemetry.AppMetrics
}

type cachedResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Header     http.Header `json:"header"`
}

func NewResponseCache(cache port.CacheRepository, configs map[string]config.ResponseCache, metrics *telemetry.AppMetrics) *ResponseCache {
	return &ResponseCache{
		cache:   cache,
		configs: configs,
		metrics: metrics,
	}
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()

		if path == "" {
			path = c.Request.URL.Path
		}

		if c.Request.Method != http.MethodGet {
			c.Next()

			// Any successful write invalidates the whole response cache.
			if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
				if err := rc.cache.DeleteByPrefix(c.Request.Context(), cacheKeyPrefix); err != nil {
					log.Warn().Err(err).Msg("response cache invalidation failed")
				}
			}

			return
		}

		cfg, ok := rc.configs[path]

		if !ok {
			cfg = rc.configs["default"]
		}

		if !cfg.Enabled {
			c.Next()
			return
		}

		key := cacheKey(c, path)

		if raw, found, err := rc.cache.Get(c.Request.Context(), key); err == nil && found {
			var cached cachedResponse

			if err := json.Unmarshal(raw, &cached); err == nil {
				if rc.metrics != nil {
					rc.metrics.RecordCacheHit(path)
				}

				for name, values := range cached.Header {
					for _, value := range values {
						c.Header(name, value)
					}
				}

				c.Header("X-Cache", "HIT")
				c.Data(cached.StatusCode, "application/json", cached.Body)
				c.Abort()
				return
			}
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(path)
		}

		writer := &bufferingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if writer.statusCode >= 200 && writer.statusCode < 300 {
			raw, err := json.Marshal(cachedResponse{
				StatusCode: writer.statusCode,
				Body:       writer.body.Bytes(),
				Header:     writer.Header().Clone(),
			})

			if err == nil {
				if err := rc.cache.Set(c.Request.Context(), key, raw, cfg.TTL); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("response cache store failed")
				}
			}

			c.Header("X-Cache", "MISS")
		}
	}
}

func cacheKey(c *gin.Context, path string) string {
	keyString := path

	if c.Request.URL.RawQuery != "" {
		keyString += "|" + c.Request.URL.RawQuery
	}

	return fmt.Sprintf("%s%s:%x", cacheKeyPrefix, path, md5.Sum([]byte(keyString)))
}

type bufferingWriter struct {
	gin.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (w *bufferingWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bufferingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (w *bufferingWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

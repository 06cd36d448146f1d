package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HTTPSEnforcer redirects plain-HTTP traffic when enabled. Localhost and
// already-terminated TLS (via X-Forwarded-Proto) pass through.
func HTTPSEnforcer(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || c.Request.TLS != nil {
			c.Next()
			return
		}

		if c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Next()
			return
		}

		host := c.Request.Host

		if strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1") {
			c.Next()
			return
		}

		httpsURL := "https://" + host + c.Request.RequestURI

		log.Info().Str("url", httpsURL).Msg("redirecting to https")

		c.Redirect(http.StatusMovedPermanently, httpsURL)
		c.Abort()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todoapi/pkg/telemetry"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with an id, honoring one supplied by the
// caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)

		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request-id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Setup installs the ambient middleware chain shared by every route.
func Setup(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics) {
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestID())
	router.Use(Logging())

	if metrics != nil {
		router.Use(Metrics(metrics))
	}
}

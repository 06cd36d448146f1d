package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"todoapi/pkg/config"
)

func limiterRouter(limits map[string]config.RateLimit) *gin.Engine {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(limits, nil)

	router := gin.New()
	router.Use(rl.Middleware())

	router.GET("/todos", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	RegisterTestingT(t)

	router := limiterRouter(map[string]config.RateLimit{
		"GET /todos": {Requests: 5, Window: time.Minute},
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
		Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("5"))
		Expect(w.Header().Get("X-RateLimit-Remaining")).ToNot(BeEmpty())
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	RegisterTestingT(t)

	router := limiterRouter(map[string]config.RateLimit{
		"GET /todos": {Requests: 3, Window: time.Minute},
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/todos", nil)
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusTooManyRequests))
	Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal("0"))
}

func TestRateLimiterFallsBackToDefault(t *testing.T) {
	RegisterTestingT(t)

	router := limiterRouter(map[string]config.RateLimit{
		"default": {Requests: 1, Window: time.Minute},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/todos", nil)
	router.ServeHTTP(w, req)
	Expect(w.Code).To(Equal(200))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/todos", nil)
	router.ServeHTTP(w, req)
	Expect(w.Code).To(Equal(http.StatusTooManyRequests))
}

func TestRateLimiterSkipsUnconfiguredRoutes(t *testing.T) {
	RegisterTestingT(t)

	router := limiterRouter(map[string]config.RateLimit{
		"POST /other": {Requests: 1, Window: time.Minute},
	})

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/todos", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(200))
	}
}

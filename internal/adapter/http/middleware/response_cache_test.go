package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	cachememory "todoapi/internal/adapter/cache/memory"
	"todoapi/pkg/config"
)

func cacheRouter(configs map[string]config.ResponseCache) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)

	rc := NewResponseCache(cachememory.New(), configs, nil)

	router := gin.New()
	router.Use(rc.Middleware())

	callCount := 0

	router.GET("/todos", func(c *gin.Context) {
		callCount++
		c.JSON(200, gin.H{"count": callCount})
	})

	router.POST("/todos", func(c *gin.Context) {
		c.JSON(201, gin.H{"status": "created"})
	})

	return router, &callCount
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", target, nil)
	router.ServeHTTP(w, req)

	return w
}

func TestResponseCacheServesFromCache(t *testing.T) {
	RegisterTestingT(t)

	router, callCount := cacheRouter(map[string]config.ResponseCache{
		"/todos": {TTL: time.Minute, Enabled: true},
	})

	w1 := get(router, "/todos")
	Expect(w1.Code).To(Equal(200))
	Expect(w1.Header().Get("X-Cache")).To(Equal("MISS"))

	w2 := get(router, "/todos")
	Expect(w2.Code).To(Equal(200))
	Expect(w2.Header().Get("X-Cache")).To(Equal("HIT"))
	Expect(w2.Body.String()).To(Equal(w1.Body.String()))

	Expect(*callCount).To(Equal(1))
}

func TestResponseCacheDisabledRoute(t *testing.T) {
	RegisterTestingT(t)

	router, callCount := cacheRouter(map[string]config.ResponseCache{
		"/todos": {TTL: time.Minute, Enabled: false},
	})

	get(router, "/todos")
	get(router, "/todos")

	Expect(*callCount).To(Equal(2))
}

func TestResponseCacheVariesByQuery(t *testing.T) {
	RegisterTestingT(t)

	router, callCount := cacheRouter(map[string]config.ResponseCache{
		"/todos": {TTL: time.Minute, Enabled: true},
	})

	get(router, "/todos?status=pending")
	get(router, "/todos?status=completed")

	Expect(*callCount).To(Equal(2))
}

func TestResponseCacheInvalidatedByWrite(t *testing.T) {
	RegisterTestingT(t)

	router, callCount := cacheRouter(map[string]config.ResponseCache{
		"/todos": {TTL: time.Minute, Enabled: true},
	})

	get(router, "/todos")
	Expect(*callCount).To(Equal(1))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/todos", nil)
	router.ServeHTTP(w, req)
	Expect(w.Code).To(Equal(201))

	get(router, "/todos")
	Expect(*callCount).To(Equal(2))
}

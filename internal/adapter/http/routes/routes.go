package routes

import (
	"github.com/gin-gonic/gin"

	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"
	"todoapi/pkg/telemetry"
)

const serviceName = "todoapi"

type Dependencies struct {
	Config  *config.Config
	Service port.TodoService
	Storage handler.Pinger
	Cache   port.CacheRepository
	Metrics *telemetry.AppMetrics
	Version string
}

// SetupRouter assembles the gin engine with the full middleware chain and
// every route the API serves.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	if deps.Config != nil {
		router.Use(middleware.HTTPSEnforcer(deps.Config.EnforceHTTPS))
	}

	middleware.Setup(router, serviceName, deps.Metrics)

	if deps.Config != nil && deps.Config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(deps.Config.RateLimits, deps.Metrics)
		router.Use(limiter.Middleware())
	}

	if deps.Config != nil && deps.Config.CacheEnabled && deps.Cache != nil {
		responseCache := middleware.NewResponseCache(deps.Cache, deps.Config.ResponseCache, deps.Metrics)
		router.Use(responseCache.Middleware())
	}

	registerRoutes(router, deps)

	return router
}

// SetupRouterForTests wires handlers straight to the service, skipping rate
// limiting, caching and telemetry so tests exercise handler behavior alone.
func SetupRouterForTests(svc port.TodoService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.CORS())

	registerRoutes(router, Dependencies{Service: svc})

	return router
}

func registerRoutes(router *gin.Engine, deps Dependencies) {
	healthHandler := handler.NewHealthHandler(deps.Storage, deps.Version)
	todoHandler := handler.NewTodoHandler(deps.Service, deps.Metrics)

	router.GET("/health", healthHandler.Health)

	todos := router.Group("/todos")
	{
		todos.GET("", todoHandler.ListTodos)
		todos.GET("/stats", todoHandler.GetStats)
		todos.GET("/:id", todoHandler.GetTodo)
		todos.POST("", todoHandler.CreateTodo)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.PATCH("/:id/toggle", todoHandler.ToggleTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}
}

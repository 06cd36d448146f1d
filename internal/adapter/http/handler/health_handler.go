package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todoapi/internal/adapter/http/helper"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	storage Pinger
	version string
}

func NewHealthHandler(storage Pinger, version string) *HealthHandler {
	return &HealthHandler{storage: storage, version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	storageStatus := "ok"
	code := http.StatusOK

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.storage.Ping(ctx); err != nil {
			status = "degraded"
			storageStatus = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	helper.SendSuccess(c, code, gin.H{
		"status":    status,
		"storage":   storageStatus,
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

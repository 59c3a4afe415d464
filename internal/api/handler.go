package api

import (
	"context"
	"net/http"
	"time"

	"github.com/expotoworld/programs-service/internal/service"
	"github.com/gin-gonic/gin"
)

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler instance
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Health handles GET /health and GET /ready
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "programs-service",
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fireenrich/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	sessions port.SessionRepository
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(sessions port.SessionRepository) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.sessions.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "session store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

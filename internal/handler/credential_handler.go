package handler

import (
	"github.com/gin-gonic/gin"

	"fireenrich/internal/logger"
	"fireenrich/internal/service"
)

// CredentialHandler exposes the client's credential availability.
type CredentialHandler struct {
	gate service.CredentialGate
	log  *logger.Logger
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(gate service.CredentialGate, log *logger.Logger) *CredentialHandler {
	return &CredentialHandler{gate: gate, log: log}
}

// Availability handles GET /api/credentials
func (h *CredentialHandler) Availability(c *gin.Context) {
	clientID, ok := extractClientID(c)
	if !ok {
		return
	}
	avail := h.gate.Check(c.Request.Context(), clientID)
	RespondOK(c, gin.H{
		"firecrawlAvailable": avail.FirecrawlAvailable,
		"openaiAvailable":    avail.OpenAIAvailable,
		"ready":              avail.Ready(),
		"missing":            avail.Missing(),
	})
}

// Clear handles DELETE /api/credentials
func (h *CredentialHandler) Clear(c *gin.Context) {
	clientID, ok := extractClientID(c)
	if !ok {
		return
	}
	if err := h.gate.Clear(c.Request.Context(), clientID); err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "stored credentials cleared"})
}

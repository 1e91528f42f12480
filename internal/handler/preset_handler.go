package handler

import (
	"github.com/gin-gonic/gin"

	"fireenrich/internal/domain"
)

// PresetHandler serves the suggested enrichment fields.
type PresetHandler struct {
	fields []domain.EnrichmentField
}

// NewPresetHandler creates a new PresetHandler.
func NewPresetHandler(fields []domain.EnrichmentField) *PresetHandler {
	return &PresetHandler{fields: fields}
}

// List handles GET /api/fields/presets
func (h *PresetHandler) List(c *gin.Context) {
	RespondOK(c, h.fields)
}

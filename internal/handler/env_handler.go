package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fireenrich/internal/logger"
	"fireenrich/internal/port"
)

// EnvHandler reports which vendor keys the server is configured with.
type EnvHandler struct {
	env port.EnvironmentProbe
	log *logger.Logger
}

// NewEnvHandler creates a new EnvHandler.
func NewEnvHandler(env port.EnvironmentProbe, log *logger.Logger) *EnvHandler {
	return &EnvHandler{env: env, log: log}
}

// CheckEnv handles GET /api/check-env
// @Summary Server credential status
// @Description Reports whether FIRECRAWL_API_KEY and OPENAI_API_KEY are configured on the server
// @Tags environment
// @Produce json
// @Success 200 {object} map[string]domain.EnvironmentStatus
// @Router /check-env [get]
func (h *EnvHandler) CheckEnv(c *gin.Context) {
	status, err := h.env.Status(c.Request.Context())
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"environmentStatus": status})
}

package handler

import (
	"github.com/gin-gonic/gin"

	"fireenrich/internal/logger"
	"fireenrich/internal/service"
)

// ClientHandler issues client tokens.
type ClientHandler struct {
	tokenService service.TokenService
	log          *logger.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(tokenService service.TokenService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{tokenService: tokenService, log: log}
}

// Register handles POST /api/clients
// @Summary Register a client
// @Description Issues a client token whose client ID scopes stored keys and wizard sessions
// @Tags clients
// @Produce json
// @Success 201 {object} APIResponse{data=service.ClientToken}
// @Router /clients [post]
func (h *ClientHandler) Register(c *gin.Context) {
	tok, err := h.tokenService.Issue()
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	h.log.Info("client registered", "client_id", tok.ClientID)
	RespondCreated(c, tok)
}

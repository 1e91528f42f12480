package router

import (
	"github.com/gin-gonic/gin"

	"fireenrich/internal/handler"
	"fireenrich/internal/logger"
	"fireenrich/internal/middleware"
	"fireenrich/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Env        *handler.EnvHandler
	Scrape     *handler.ScrapeHandler
	Client     *handler.ClientHandler
	Credential *handler.CredentialHandler
	Preset     *handler.PresetHandler
	Wizard     *handler.WizardHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokenSvc service.TokenService,
	h Handlers,
	allowedOrigins []string,
	log *logger.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	api := r.Group("/api")

	// Public routes
	api.GET("/check-env", h.Env.CheckEnv)
	api.POST("/scrape", h.Scrape.Scrape)
	api.POST("/clients", h.Client.Register)
	api.GET("/fields/presets", h.Preset.List)

	// Client-scoped routes
	protected := api.Group("")
	protected.Use(middleware.ClientAuth(tokenSvc))

	protected.GET("/credentials", h.Credential.Availability)
	protected.DELETE("/credentials", h.Credential.Clear)

	sessions := protected.Group("/sessions")
	sessions.POST("", h.Wizard.Create)
	sessions.GET("/:id", h.Wizard.Get)
	sessions.DELETE("/:id", h.Wizard.Delete)
	sessions.POST("/:id/upload", h.Wizard.Upload)
	sessions.POST("/:id/credentials", h.Wizard.SubmitCredentials)
	sessions.DELETE("/:id/credentials", h.Wizard.DismissPrompt)
	sessions.POST("/:id/setup", h.Wizard.Setup)
	sessions.POST("/:id/back", h.Wizard.Back)
	sessions.POST("/:id/reset", h.Wizard.Reset)
	sessions.POST("/:id/enrich", h.Wizard.Enrich)
	sessions.GET("/:id/export", h.Wizard.Export)
	sessions.POST("/:id/archive", h.Wizard.Archive)

	return r
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fireenrich/internal/logger"
	"fireenrich/internal/service"
)

// FirecrawlKeyHeader carries a caller-supplied Firecrawl key.
const FirecrawlKeyHeader = "X-Firecrawl-API-Key"

// ScrapeHandler handles single-URL scraping, also used as a key probe.
type ScrapeHandler struct {
	scrapeService service.ScrapeService
	log           *logger.Logger
}

// NewScrapeHandler creates a new ScrapeHandler.
func NewScrapeHandler(scrapeService service.ScrapeService, log *logger.Logger) *ScrapeHandler {
	return &ScrapeHandler{scrapeService: scrapeService, log: log}
}

type scrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// Scrape handles POST /api/scrape
// @Summary Scrape a URL
// @Description Scrape one page to markdown with the header key or the server's key
// @Tags scrape
// @Accept json
// @Produce json
// @Param X-Firecrawl-API-Key header string false "Firecrawl API key"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "Invalid URL or rejected key"
// @Failure 412 {object} APIResponse "No key available"
// @Router /scrape [post]
func (h *ScrapeHandler) Scrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "url is required")
		return
	}

	out, err := h.scrapeService.Scrape(c.Request.Context(), req.URL, c.GetHeader(FirecrawlKeyHeader))
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, out)
}

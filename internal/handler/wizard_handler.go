package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
	"fireenrich/internal/service"
)

// WizardHandler drives the upload, setup and enrichment steps of a session.
type WizardHandler struct {
	wizard       service.WizardService
	enrichment   service.EnrichmentService
	export       service.ExportService
	parser       port.SpreadsheetParser
	maxFileBytes int64
	log          *logger.Logger
}

// NewWizardHandler creates a new WizardHandler. maxFileSizeMB <= 0 disables the size check.
func NewWizardHandler(
	wizard service.WizardService,
	enrichment service.EnrichmentService,
	export service.ExportService,
	parser port.SpreadsheetParser,
	maxFileSizeMB int64,
	log *logger.Logger,
) *WizardHandler {
	return &WizardHandler{
		wizard:       wizard,
		enrichment:   enrichment,
		export:       export,
		parser:       parser,
		maxFileBytes: maxFileSizeMB << 20,
		log:          log,
	}
}

type setupRequest struct {
	EmailColumn string                   `json:"email_column" binding:"required"`
	Fields      []domain.EnrichmentField `json:"fields"`
}

// Create handles POST /api/sessions
// @Summary Start a wizard session
// @Tags sessions
// @Produce json
// @Success 201 {object} APIResponse{data=domain.WizardSession}
// @Security BearerAuth
// @Router /sessions [post]
func (h *WizardHandler) Create(c *gin.Context) {
	clientID, ok := extractClientID(c)
	if !ok {
		return
	}
	session, err := h.wizard.Create(c.Request.Context(), clientID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, session)
}

// Get handles GET /api/sessions/:id
func (h *WizardHandler) Get(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	session, err := h.wizard.Get(c.Request.Context(), clientID, sessionID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, session)
}

// Delete handles DELETE /api/sessions/:id
// @Summary Discard a wizard session
// @Description Removes the session and its uploaded rows and results. Stored credentials are kept.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Session not found"
// @Security BearerAuth
// @Router /sessions/{id} [delete]
func (h *WizardHandler) Delete(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	if err := h.wizard.Delete(c.Request.Context(), clientID, sessionID); err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "session deleted"})
}

// Upload handles POST /api/sessions/:id/upload
// @Summary Upload a spreadsheet
// @Description Parse a CSV or XLSX file. Advances to setup when both keys are available, otherwise returns the credential prompt.
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Spreadsheet (CSV or XLSX)"
// @Success 200 {object} APIResponse{data=service.UploadOutcome}
// @Failure 400 {object} APIResponse "Missing file, unsupported type or unparseable content"
// @Failure 409 {object} APIResponse "Session is not on the upload step"
// @Failure 413 {object} APIResponse "File too large"
// @Security BearerAuth
// @Router /sessions/{id}/upload [post]
func (h *WizardHandler) Upload(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxFileBytes > 0 && header.Size > h.maxFileBytes {
		HandleError(c, h.log, domain.ErrFileTooLarge)
		return
	}

	input, err := h.parser.Parse(header.Filename, file)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	outcome, err := h.wizard.Upload(c.Request.Context(), clientID, sessionID, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	h.log.Info("spreadsheet uploaded",
		"session_id", sessionID,
		"filename", header.Filename,
		"rows", len(input.Rows),
		"prompt_required", outcome.PromptRequired,
	)
	RespondOK(c, outcome)
}

// SubmitCredentials handles POST /api/sessions/:id/credentials
// @Summary Submit missing API keys
// @Description Validates and stores the keys listed in the session's credential prompt, then advances to setup
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body service.CredentialSubmission true "Keys"
// @Success 200 {object} APIResponse{data=domain.WizardSession}
// @Failure 400 {object} APIResponse "Missing or rejected key"
// @Failure 409 {object} APIResponse "A validation is already running"
// @Security BearerAuth
// @Router /sessions/{id}/credentials [post]
func (h *WizardHandler) SubmitCredentials(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}

	var sub service.CredentialSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	session, err := h.wizard.SubmitCredentials(c.Request.Context(), clientID, sessionID, sub)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, session)
}

// DismissPrompt handles DELETE /api/sessions/:id/credentials
func (h *WizardHandler) DismissPrompt(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	session, err := h.wizard.DismissCredentialPrompt(c.Request.Context(), clientID, sessionID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, session)
}

// Setup handles POST /api/sessions/:id/setup
// @Summary Choose email column and fields
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=domain.WizardSession}
// @Failure 400 {object} APIResponse "Unknown column or invalid fields"
// @Security BearerAuth
// @Router /sessions/{id}/setup [post]
func (h *WizardHandler) Setup(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "email_column is required")
		return
	}

	session, err := h.wizard.StartEnrichment(c.Request.Context(), clientID, sessionID, req.EmailColumn, req.Fields)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, session)
}

// Back handles POST /api/sessions/:id/back
func (h *WizardHandler) Back(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	session, err := h.wizard.Back(c.Request.Context(), clientID, sessionID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, session)
}

// Reset handles POST /api/sessions/:id/reset
func (h *WizardHandler) Reset(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	session, err := h.wizard.Reset(c.Request.Context(), clientID, sessionID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, session)
}

// Enrich handles POST /api/sessions/:id/enrich
// @Summary Run enrichment
// @Description Scrapes each row's company domain and extracts the selected fields. Row failures are reported per row.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=[]domain.RowResult}
// @Failure 409 {object} APIResponse "Session is not on the enrichment step"
// @Failure 412 {object} APIResponse "Credentials missing"
// @Security BearerAuth
// @Router /sessions/{id}/enrich [post]
func (h *WizardHandler) Enrich(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	results, err := h.enrichment.Enrich(c.Request.Context(), clientID, sessionID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, results)
}

// Export handles GET /api/sessions/:id/export
// @Summary Download enriched rows
// @Tags sessions
// @Produce text/csv
// @Param id path string true "Session ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /sessions/{id}/export [get]
func (h *WizardHandler) Export(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	if format != service.ExportCSV && format != service.ExportXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	var buf bytes.Buffer
	filename, err := h.export.Export(c.Request.Context(), clientID, sessionID, format, &buf)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Archive handles POST /api/sessions/:id/archive
// @Summary Archive the export to object storage
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=service.ArchiveOutput}
// @Failure 501 {object} APIResponse "Object storage not configured"
// @Security BearerAuth
// @Router /sessions/{id}/archive [post]
func (h *WizardHandler) Archive(c *gin.Context) {
	clientID, sessionID, ok := extractSessionScope(c)
	if !ok {
		return
	}
	out, err := h.export.Archive(c.Request.Context(), clientID, sessionID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, out)
}

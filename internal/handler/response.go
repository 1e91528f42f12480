package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fireenrich/internal/domain"
	"fireenrich/internal/llm"
	"fireenrich/internal/logger"
	"fireenrich/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rateLimited *llm.RateLimitError
	switch {
	case errors.Is(err, domain.ErrMissingRequiredInput):
		return http.StatusBadRequest, "MISSING_REQUIRED_INPUT", "please enter every required API key"
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusBadRequest, "INVALID_CREDENTIAL", "the API key was rejected; check it and try again"
	case errors.Is(err, domain.ErrValidationInFlight):
		return http.StatusConflict, "VALIDATION_IN_PROGRESS", "credential validation already in progress"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", "action not allowed in the current wizard step"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND", "wizard session not found"
	case errors.Is(err, domain.ErrCredentialsRequired):
		return http.StatusPreconditionFailed, "CREDENTIALS_REQUIRED", "Firecrawl and OpenAI API keys are required"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrParseFailed):
		return http.StatusBadRequest, "PARSE_FAILED", "the spreadsheet could not be read"
	case errors.Is(err, domain.ErrTooManyRows):
		return http.StatusBadRequest, "TOO_MANY_ROWS", "spreadsheet exceeds maximum row count"
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest, "EMPTY_INPUT", "spreadsheet has no rows or columns"
	case errors.Is(err, domain.ErrUnknownColumn):
		return http.StatusBadRequest, "UNKNOWN_COLUMN", "email column is not one of the uploaded columns"
	case errors.Is(err, domain.ErrNoFieldsSelected):
		return http.StatusBadRequest, "NO_FIELDS_SELECTED", "select at least one field to enrich"
	case errors.Is(err, domain.ErrInvalidField):
		return http.StatusBadRequest, "INVALID_FIELD", err.Error()
	case errors.Is(err, domain.ErrInvalidURL):
		return http.StatusBadRequest, "INVALID_URL", "url must be an absolute http or https URL"
	case errors.Is(err, domain.ErrStorageDisabled):
		return http.StatusNotImplemented, "STORAGE_DISABLED", "export archiving is not configured"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "upstream API rate limit reached; try again later"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *logger.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Error("internal error", "request_id", requestID, "error", err)
	}
	RespondError(c, status, code, msg)
}

// extractClientID returns the authenticated client ID.
// Returns false if it is missing (error response already written).
func extractClientID(c *gin.Context) (uuid.UUID, bool) {
	clientID, err := middleware.GetClientID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing client context")
		return uuid.Nil, false
	}
	return clientID, true
}

// extractSessionScope returns the client ID and the :id path parameter.
func extractSessionScope(c *gin.Context) (clientID, sessionID uuid.UUID, ok bool) {
	clientID, ok = extractClientID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, sessionID, true
}

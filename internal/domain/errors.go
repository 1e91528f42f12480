package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrParseFailed         = errors.New("spreadsheet could not be parsed")
	ErrTooManyRows         = errors.New("spreadsheet exceeds maximum row count")
	ErrEmptyInput          = errors.New("spreadsheet has no rows or columns")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrStorageDisabled     = errors.New("object storage is not configured")

	// Wizard
	ErrSessionNotFound   = errors.New("wizard session not found")
	ErrInvalidTransition = errors.New("action not allowed in the current wizard step")
	ErrUnknownColumn     = errors.New("email column is not one of the uploaded columns")
	ErrNoFieldsSelected  = errors.New("at least one enrichment field is required")
	ErrInvalidField      = errors.New("enrichment field is invalid")

	// Credential gate
	ErrMissingRequiredInput   = errors.New("a required API key was not provided")
	ErrInvalidCredential      = errors.New("API key was rejected")
	ErrValidationInFlight     = errors.New("credential validation already in progress")
	ErrCredentialsRequired    = errors.New("API keys are not available")
	ErrEnvironmentCheckFailed = errors.New("environment check failed")

	// Scrape
	ErrInvalidURL = errors.New("url must be an absolute http or https URL")
)

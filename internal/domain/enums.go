package domain

// WizardStep is the current screen of an enrichment wizard.
type WizardStep string

const (
	StepUpload     WizardStep = "upload"
	StepSetup      WizardStep = "setup"
	StepEnrichment WizardStep = "enrichment"
)

// FileType represents the allowed spreadsheet types for upload.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"csv":  FileTypeCSV,
	"xlsx": FileTypeXLSX,
}

// FieldType is the value type an enrichment field is extracted as.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
)

// ValidFieldTypes lists the accepted FieldType values.
var ValidFieldTypes = map[FieldType]bool{
	FieldTypeString:  true,
	FieldTypeNumber:  true,
	FieldTypeBoolean: true,
	FieldTypeArray:   true,
}

// CredentialKind identifies one of the two vendor API keys.
type CredentialKind string

const (
	CredentialFirecrawl CredentialKind = "firecrawl"
	CredentialOpenAI    CredentialKind = "openai"
)

// StorageKey returns the fixed name a client-supplied key is stored under.
func (k CredentialKind) StorageKey() string {
	switch k {
	case CredentialFirecrawl:
		return "firecrawl_api_key"
	case CredentialOpenAI:
		return "openai_api_key"
	default:
		return string(k) + "_api_key"
	}
}

// RowStatus is the outcome of enriching a single row.
type RowStatus string

const (
	RowStatusCompleted RowStatus = "completed"
	RowStatusSkipped   RowStatus = "skipped"
	RowStatusError     RowStatus = "error"
)

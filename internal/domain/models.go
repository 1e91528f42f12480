package domain

import (
	"time"

	"github.com/google/uuid"
)

// Row is one spreadsheet row keyed by column name.
type Row map[string]string

// TabularInput is a parsed spreadsheet: ordered rows plus ordered column names.
// It is not modified after parsing.
type TabularInput struct {
	Rows    []Row    `json:"rows"`
	Columns []string `json:"columns"`
}

// IsEmpty reports whether the input has no rows or no columns.
func (t *TabularInput) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0 || len(t.Columns) == 0
}

// HasColumn reports whether name is one of the input's columns.
func (t *TabularInput) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnrichmentField describes one value to extract for every row.
type EnrichmentField struct {
	Name        string    `json:"name" yaml:"name"`
	DisplayName string    `json:"display_name" yaml:"display_name"`
	Description string    `json:"description" yaml:"description"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required" yaml:"required"`
}

// Label returns the display name, falling back to the field name.
func (f EnrichmentField) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Name
}

// CredentialPrompt lists the API keys a client still has to supply.
type CredentialPrompt struct {
	Firecrawl bool `json:"firecrawl"`
	OpenAI    bool `json:"openai"`
}

// CredentialAvailability reports, per key, whether it is configured on the
// server or stored for the client.
type CredentialAvailability struct {
	FirecrawlAvailable bool `json:"firecrawlAvailable"`
	OpenAIAvailable    bool `json:"openaiAvailable"`
}

// Ready reports whether enrichment may proceed.
func (a CredentialAvailability) Ready() bool {
	return a.FirecrawlAvailable && a.OpenAIAvailable
}

// Missing returns the prompt for the keys that are still unavailable.
func (a CredentialAvailability) Missing() CredentialPrompt {
	return CredentialPrompt{
		Firecrawl: !a.FirecrawlAvailable,
		OpenAI:    !a.OpenAIAvailable,
	}
}

// EnvironmentStatus reports which vendor keys the server itself is configured with.
type EnvironmentStatus struct {
	FirecrawlAPIKey bool `json:"FIRECRAWL_API_KEY"`
	OpenAIAPIKey    bool `json:"OPENAI_API_KEY"`
}

// FieldValue is one extracted value with its provenance.
type FieldValue struct {
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
	Source     string      `json:"source,omitempty"`
}

// RowResult is the enrichment outcome for a single input row.
type RowResult struct {
	Index  int                   `json:"index"`
	Email  string                `json:"email"`
	Domain string                `json:"domain,omitempty"`
	Status RowStatus             `json:"status"`
	Fields map[string]FieldValue `json:"fields,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// WizardSession is the state of one upload → setup → enrichment flow.
type WizardSession struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	ClientID         uuid.UUID         `db:"client_id" json:"client_id"`
	Step             WizardStep        `db:"step" json:"step"`
	Input            *TabularInput     `json:"input,omitempty"`
	PendingInput     *TabularInput     `json:"-"`
	CredentialPrompt *CredentialPrompt `json:"credential_prompt,omitempty"`
	EmailColumn      string            `db:"email_column" json:"email_column,omitempty"`
	Fields           []EnrichmentField `json:"fields,omitempty"`
	Results          []RowResult       `json:"results,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// Clone returns a copy that shares no mutable slices with s. Rows are shared
// since a TabularInput is never modified after parsing.
func (s *WizardSession) Clone() *WizardSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.CredentialPrompt != nil {
		p := *s.CredentialPrompt
		c.CredentialPrompt = &p
	}
	if s.Fields != nil {
		c.Fields = append([]EnrichmentField(nil), s.Fields...)
	}
	if s.Results != nil {
		c.Results = append([]RowResult(nil), s.Results...)
	}
	return &c
}

// ClearSetup drops everything chosen on the setup step.
func (s *WizardSession) ClearSetup() {
	s.EmailColumn = ""
	s.Fields = nil
	s.Results = nil
}

// ResolvedCredentials are the effective vendor keys for one client.
type ResolvedCredentials struct {
	FirecrawlAPIKey string
	OpenAIAPIKey    string
}

package port

import (
	"context"

	"fireenrich/internal/domain"
)

// ExtractInput carries one row's context for LLM field extraction.
type ExtractInput struct {
	APIKey  string
	Email   string
	Domain  string
	Content string
	Fields  []domain.EnrichmentField
}

// ExtractOutput holds the extracted values keyed by field name.
type ExtractOutput struct {
	Fields    map[string]domain.FieldValue
	ModelUsed string
}

// FieldExtractor abstracts LLM-based structured field extraction.
type FieldExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

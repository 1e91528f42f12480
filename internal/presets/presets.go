package presets

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fireenrich/internal/domain"
)

//go:embed default_fields.yaml
var defaultFields []byte

type document struct {
	Fields []domain.EnrichmentField `yaml:"fields"`
}

// Load returns the field presets from path, or the embedded defaults when path is empty.
func Load(path string) ([]domain.EnrichmentField, error) {
	if path == "" {
		return Parse(defaultFields)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a presets document and validates every field.
func Parse(data []byte) ([]domain.EnrichmentField, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("parsing presets: no fields defined")
	}
	seen := make(map[string]bool, len(doc.Fields))
	for i := range doc.Fields {
		f := &doc.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		if f.Type == "" {
			f.Type = domain.FieldTypeString
		}
		if err := ValidateField(*f); err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("preset %d: %w: duplicate name %q", i, domain.ErrInvalidField, f.Name)
		}
		seen[f.Name] = true
	}
	return doc.Fields, nil
}

// ValidateField checks a single field's name and type.
func ValidateField(f domain.EnrichmentField) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidField)
	}
	if f.Type != "" && !domain.ValidFieldTypes[f.Type] {
		return fmt.Errorf("%w: unknown type %q for %q", domain.ErrInvalidField, f.Type, f.Name)
	}
	return nil
}

package llm

import (
	"fmt"
	"strings"

	"fireenrich/internal/domain"
)

// SystemPrompt frames the extraction task for every row.
const SystemPrompt = `You are a B2B research assistant. You receive the main content of a company's website and the email address of a contact who works there. Extract the requested fields about the company.

Rules:
- Use only facts stated or clearly implied by the content. Never guess.
- If a field cannot be determined, set its value to null and its confidence to 0.
- Confidence is a number between 0 and 1.
- "source" is a short quote or the page section the value came from.

Return ONLY a JSON object with no markdown formatting, no code fences, no explanation.`

// BuildExtractionPrompt returns the user prompt listing the fields to extract
// and the JSON shape expected back.
func BuildExtractionPrompt(email, companyDomain, content string, fields []domain.EnrichmentField) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Contact email: %s\nCompany domain: %s\n\n", email, companyDomain)

	b.WriteString("Fields to extract:\n")
	for _, f := range fields {
		typ := f.Type
		if typ == "" {
			typ = domain.FieldTypeString
		}
		fmt.Fprintf(&b, "- %s (%s): %s", f.Name, typ, f.Label())
		if f.Description != "" {
			fmt.Fprintf(&b, " - %s", f.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Respond with this structure:
{
  "fields": {
    "<field name>": {"value": <value or null>, "confidence": 0.0, "source": ""}
  }
}

Website content:
`)
	b.WriteString(content)
	return b.String()
}

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fireenrich/internal/config"
	"fireenrich/internal/domain"
	"fireenrich/internal/llm"
	"fireenrich/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Extractor implements port.FieldExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates an OpenAI-based field extractor.
func NewExtractor(cfg *config.OpenAIConfig) *Extractor {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newExtractor(cfg, endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.OpenAIConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.OpenAIConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Extract asks the model for the requested fields. input.APIKey overrides the
// configured key when set.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	apiKey := input.APIKey
	if apiKey == "" {
		apiKey = e.apiKey
	}
	if apiKey == "" {
		return nil, domain.ErrCredentialsRequired
	}

	prompt := llm.BuildExtractionPrompt(input.Email, input.Domain, input.Content, input.Fields)

	reqBody := map[string]interface{}{
		"model":                 e.model,
		"max_completion_tokens": 4096,
		"messages": []map[string]interface{}{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, llm.Truncate(string(respBody), 500))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError("openai", baseErr, retryAfter)
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, baseErr)
		}
		return nil, baseErr
	}

	fields, err := parseResponse(respBody, input.Fields)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Fields: fields, ModelUsed: e.model}, nil
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// parseResponse decodes the model output, keeping only requested fields.
// Requested fields the model omitted come back as null with zero confidence.
func parseResponse(body []byte, requested []domain.EnrichmentField) (map[string]domain.FieldValue, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	text := resp.Choices[0].Message.Content

	var parsed struct {
		Fields map[string]domain.FieldValue `json:"fields"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, llm.Truncate(text, 500))
	}

	out := make(map[string]domain.FieldValue, len(requested))
	for _, f := range requested {
		v, ok := parsed.Fields[f.Name]
		if !ok {
			v = domain.FieldValue{}
		}
		if v.Confidence < 0 {
			v.Confidence = 0
		}
		if v.Confidence > 1 {
			v.Confidence = 1
		}
		out[f.Name] = v
	}
	return out, nil
}

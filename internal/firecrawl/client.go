package firecrawl

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
	defaultBaseURL = "https://api.firecrawl.dev"
	scrapePath     = "/v1/scrape"
)

// Client implements port.Scraper against the Firecrawl scrape API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Firecrawl client from config.
func NewClient(cfg *config.FirecrawlConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			SourceURL   string `json:"sourceURL"`
			StatusCode  int    `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

// Scrape fetches the main content of input.URL as markdown. The key always
// comes from the caller; the client holds no key of its own.
func (c *Client) Scrape(ctx context.Context, input port.ScrapeInput) (*port.ScrapeOutput, error) {
	if input.APIKey == "" {
		return nil, domain.ErrCredentialsRequired
	}

	bodyBytes, err := json.Marshal(scrapeRequest{
		URL:             input.URL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scrapePath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+input.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling firecrawl API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		baseErr := fmt.Errorf("firecrawl API error (status %d): %s", resp.StatusCode, llm.Truncate(string(respBody), 500))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, baseErr)
		case http.StatusTooManyRequests:
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError("firecrawl", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("firecrawl scrape failed: %s", parsed.Error)
	}

	sourceURL := parsed.Data.Metadata.SourceURL
	if sourceURL == "" {
		sourceURL = input.URL
	}
	return &port.ScrapeOutput{
		URL:         sourceURL,
		Title:       parsed.Data.Metadata.Title,
		Description: parsed.Data.Metadata.Description,
		Markdown:    parsed.Data.Markdown,
	}, nil
}

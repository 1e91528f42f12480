package port

import "context"

// ScrapeInput carries a page to fetch and the key to fetch it with.
type ScrapeInput struct {
	URL    string
	APIKey string
}

// ScrapeOutput is the main content of a scraped page.
type ScrapeOutput struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Markdown    string `json:"markdown"`
}

// Scraper abstracts the web scraping vendor.
type Scraper interface {
	Scrape(ctx context.Context, input ScrapeInput) (*ScrapeOutput, error)
}

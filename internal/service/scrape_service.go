package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
)

// ScrapeService scrapes a single URL with either a caller-supplied key or the server's own.
type ScrapeService interface {
	Scrape(ctx context.Context, rawURL, apiKeyOverride string) (*port.ScrapeOutput, error)
}

type scrapeService struct {
	scraper   port.Scraper
	serverKey string
	log       *logger.Logger
}

// NewScrapeService creates a new ScrapeService implementation.
func NewScrapeService(scraper port.Scraper, serverKey string, log *logger.Logger) ScrapeService {
	return &scrapeService{
		scraper:   scraper,
		serverKey: serverKey,
		log:       log.With("service", "ScrapeService"),
	}
}

func (s *scrapeService) Scrape(ctx context.Context, rawURL, apiKeyOverride string) (*port.ScrapeOutput, error) {
	target, err := ValidateScrapeURL(rawURL)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(apiKeyOverride)
	if key == "" {
		key = s.serverKey
	}
	if key == "" {
		return nil, domain.ErrCredentialsRequired
	}

	out, err := s.scraper.Scrape(ctx, port.ScrapeInput{URL: target, APIKey: key})
	if err != nil {
		s.log.Warn("scrape failed", "url", target, "error", err)
		return nil, fmt.Errorf("scrapeService.Scrape: %w", err)
	}
	return out, nil
}

// ValidateScrapeURL accepts only absolute http(s) URLs with a host.
func ValidateScrapeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", domain.ErrInvalidURL
	}
	return u.String(), nil
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fireenrich/internal/port"
)

// MockScraper is a mock implementation of port.Scraper.
type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, input port.ScrapeInput) (*port.ScrapeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ScrapeOutput), args.Error(1)
}

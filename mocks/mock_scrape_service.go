package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fireenrich/internal/port"
)

// MockScrapeService is a mock implementation of service.ScrapeService.
type MockScrapeService struct {
	mock.Mock
}

func (m *MockScrapeService) Scrape(ctx context.Context, rawURL, apiKeyOverride string) (*port.ScrapeOutput, error) {
	args := m.Called(ctx, rawURL, apiKeyOverride)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ScrapeOutput), args.Error(1)
}

package service

import (
	"context"

	"fireenrich/internal/config"
	"fireenrich/internal/domain"
	"fireenrich/internal/port"
)

type envService struct {
	firecrawlKey string
	openAIKey    string
}

// NewEnvService reports which vendor keys the server itself was started with.
func NewEnvService(firecrawl config.FirecrawlConfig, openAI config.OpenAIConfig) port.EnvironmentProbe {
	return &envService{firecrawlKey: firecrawl.APIKey, openAIKey: openAI.APIKey}
}

func (s *envService) Status(_ context.Context) (*domain.EnvironmentStatus, error) {
	return &domain.EnvironmentStatus{
		FirecrawlAPIKey: s.firecrawlKey != "",
		OpenAIAPIKey:    s.openAIKey != "",
	}, nil
}

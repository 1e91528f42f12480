package service_test

import (
	"github.com/stretchr/testify/mock"

	"fireenrich/internal/credstore/memory"
	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
	"fireenrich/internal/service"
	"fireenrich/mocks"
)

const probeURL = "https://example.com"

type gateFixture struct {
	env    *mocks.MockEnvironmentProbe
	scrape *mocks.MockScrapeService
	store  *memory.Store
	gate   service.CredentialGate
}

// newGateFixture builds a gate whose server side reports the given keys as configured.
func newGateFixture(serverFirecrawl, serverOpenAI bool) *gateFixture {
	env := new(mocks.MockEnvironmentProbe)
	env.On("Status", mock.Anything).Return(&domain.EnvironmentStatus{
		FirecrawlAPIKey: serverFirecrawl,
		OpenAIAPIKey:    serverOpenAI,
	}, nil)

	cfg := service.GateConfig{ProbeURL: probeURL}
	if serverFirecrawl {
		cfg.FirecrawlAPIKey = "fc-server"
	}
	if serverOpenAI {
		cfg.OpenAIAPIKey = "sk-server"
	}

	scrape := new(mocks.MockScrapeService)
	store := memory.NewStore()
	return &gateFixture{
		env:    env,
		scrape: scrape,
		store:  store,
		gate:   service.NewCredentialGate(env, store, scrape, cfg, logger.NewNop()),
	}
}

func probeOK() *port.ScrapeOutput {
	return &port.ScrapeOutput{URL: probeURL, Title: "Example Domain", Markdown: "# Example Domain"}
}

func sampleInput() *domain.TabularInput {
	return &domain.TabularInput{
		Columns: []string{"name", "email"},
		Rows: []domain.Row{
			{"name": "Ada", "email": "ada@acme.io"},
			{"name": "Bob", "email": "bob@globex.com"},
		},
	}
}

func sampleFields() []domain.EnrichmentField {
	return []domain.EnrichmentField{
		{Name: "industry", DisplayName: "Industry", Type: domain.FieldTypeString},
		{Name: "employee_count", Type: domain.FieldTypeNumber},
	}
}

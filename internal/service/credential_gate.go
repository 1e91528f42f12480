package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
)

// CredentialSubmission carries the keys a client typed into the credential prompt.
type CredentialSubmission struct {
	FirecrawlAPIKey string `json:"firecrawl_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key"`
}

// GateConfig holds the server-side keys and the live probe target.
type GateConfig struct {
	FirecrawlAPIKey string
	OpenAIAPIKey    string
	ProbeURL        string
}

// CredentialGate decides whether both vendor keys are available to a client
// and collects the missing ones.
type CredentialGate interface {
	Check(ctx context.Context, clientID uuid.UUID) domain.CredentialAvailability
	Submit(ctx context.Context, clientID uuid.UUID, sub CredentialSubmission) error
	Resolve(ctx context.Context, clientID uuid.UUID) (*domain.ResolvedCredentials, error)
	Clear(ctx context.Context, clientID uuid.UUID) error
}

type credentialGate struct {
	env    port.EnvironmentProbe
	store  port.CredentialStore
	scrape ScrapeService
	cfg    GateConfig
	log    *logger.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewCredentialGate creates a new CredentialGate implementation.
func NewCredentialGate(
	env port.EnvironmentProbe,
	store port.CredentialStore,
	scrape ScrapeService,
	cfg GateConfig,
	log *logger.Logger,
) CredentialGate {
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = "https://example.com"
	}
	return &credentialGate{
		env:      env,
		store:    store,
		scrape:   scrape,
		cfg:      cfg,
		log:      log.With("service", "CredentialGate"),
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Check always asks the environment probe and the store afresh.
func (g *credentialGate) Check(ctx context.Context, clientID uuid.UUID) domain.CredentialAvailability {
	var server domain.EnvironmentStatus
	status, err := g.env.Status(ctx)
	if err != nil {
		g.log.Warn("environment check failed, treating as unconfigured",
			"client_id", clientID, "error", fmt.Errorf("%w: %v", domain.ErrEnvironmentCheckFailed, err))
	} else if status != nil {
		server = *status
	}

	return domain.CredentialAvailability{
		FirecrawlAvailable: server.FirecrawlAPIKey || g.isStored(ctx, clientID, domain.CredentialFirecrawl),
		OpenAIAvailable:    server.OpenAIAPIKey || g.isStored(ctx, clientID, domain.CredentialOpenAI),
	}
}

func (g *credentialGate) isStored(ctx context.Context, clientID uuid.UUID, kind domain.CredentialKind) bool {
	v, ok, err := g.store.Get(ctx, clientID, kind.StorageKey())
	if err != nil {
		g.log.Warn("credential store read failed", "client_id", clientID, "credential", kind, "error", err)
		return false
	}
	return ok && v != ""
}

func (g *credentialGate) acquire(clientID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[clientID]; busy {
		return false
	}
	g.inFlight[clientID] = struct{}{}
	return true
}

func (g *credentialGate) release(clientID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, clientID)
}

func (g *credentialGate) Submit(ctx context.Context, clientID uuid.UUID, sub CredentialSubmission) error {
	if !g.acquire(clientID) {
		return domain.ErrValidationInFlight
	}
	defer g.release(clientID)

	avail := g.Check(ctx, clientID)
	firecrawlKey := strings.TrimSpace(sub.FirecrawlAPIKey)
	openAIKey := strings.TrimSpace(sub.OpenAIAPIKey)

	if !avail.FirecrawlAvailable && firecrawlKey == "" {
		return fmt.Errorf("%w: firecrawl", domain.ErrMissingRequiredInput)
	}
	if !avail.OpenAIAvailable && openAIKey == "" {
		return fmt.Errorf("%w: openai", domain.ErrMissingRequiredInput)
	}

	if !avail.FirecrawlAvailable {
		if _, err := g.scrape.Scrape(ctx, g.cfg.ProbeURL, firecrawlKey); err != nil {
			g.log.Info("firecrawl key rejected by probe", "client_id", clientID, "error", err)
			return fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
		}
		if err := g.store.Set(ctx, clientID, domain.CredentialFirecrawl.StorageKey(), firecrawlKey); err != nil {
			return fmt.Errorf("credentialGate.Submit: %w", err)
		}
	}
	if !avail.OpenAIAvailable {
		if err := g.store.Set(ctx, clientID, domain.CredentialOpenAI.StorageKey(), openAIKey); err != nil {
			return fmt.Errorf("credentialGate.Submit: %w", err)
		}
	}

	g.log.Info("credentials accepted", "client_id", clientID,
		"stored_firecrawl", !avail.FirecrawlAvailable, "stored_openai", !avail.OpenAIAvailable)
	return nil
}

// Resolve prefers the server's keys and falls back to the client's stored ones.
func (g *credentialGate) Resolve(ctx context.Context, clientID uuid.UUID) (*domain.ResolvedCredentials, error) {
	creds := &domain.ResolvedCredentials{
		FirecrawlAPIKey: g.cfg.FirecrawlAPIKey,
		OpenAIAPIKey:    g.cfg.OpenAIAPIKey,
	}

	var err error
	if creds.FirecrawlAPIKey == "" {
		if creds.FirecrawlAPIKey, err = g.stored(ctx, clientID, domain.CredentialFirecrawl); err != nil {
			return nil, err
		}
	}
	if creds.OpenAIAPIKey == "" {
		if creds.OpenAIAPIKey, err = g.stored(ctx, clientID, domain.CredentialOpenAI); err != nil {
			return nil, err
		}
	}
	if creds.FirecrawlAPIKey == "" || creds.OpenAIAPIKey == "" {
		return nil, domain.ErrCredentialsRequired
	}
	return creds, nil
}

func (g *credentialGate) stored(ctx context.Context, clientID uuid.UUID, kind domain.CredentialKind) (string, error) {
	v, _, err := g.store.Get(ctx, clientID, kind.StorageKey())
	if err != nil {
		return "", fmt.Errorf("credentialGate.Resolve: %w", err)
	}
	return v, nil
}

func (g *credentialGate) Clear(ctx context.Context, clientID uuid.UUID) error {
	err := g.store.Delete(ctx, clientID,
		domain.CredentialFirecrawl.StorageKey(), domain.CredentialOpenAI.StorageKey())
	if err != nil {
		return fmt.Errorf("credentialGate.Clear: %w", err)
	}
	g.log.Info("stored credentials cleared", "client_id", clientID)
	return nil
}

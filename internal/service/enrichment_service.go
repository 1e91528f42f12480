package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fireenrich/internal/domain"
	"fireenrich/internal/llm"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
)

// personalDomains are mailbox providers whose websites say nothing about the contact's employer.
var personalDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"live.com":       true,
	"msn.com":        true,
	"icloud.com":     true,
	"me.com":         true,
	"aol.com":        true,
	"protonmail.com": true,
	"proton.me":      true,
	"gmx.com":        true,
	"mail.com":       true,
	"yandex.com":     true,
	"zoho.com":       true,
}

// EnrichmentConfig tunes the row fan-out.
type EnrichmentConfig struct {
	Concurrency     int
	MaxContentChars int
	// RunTimeout bounds the whole fan-out; rows unfinished by then are
	// recorded as errors. Zero means no bound beyond the caller's context.
	RunTimeout time.Duration
}

// EnrichmentService fills the selected fields for every row of a session in the enrichment step.
type EnrichmentService interface {
	Enrich(ctx context.Context, clientID, sessionID uuid.UUID) ([]domain.RowResult, error)
}

type enrichmentService struct {
	repo      port.SessionRepository
	gate      CredentialGate
	scraper   port.Scraper
	extractor port.FieldExtractor
	locks     *SessionLocker
	cfg       EnrichmentConfig
	log       *logger.Logger
}

// NewEnrichmentService creates a new EnrichmentService implementation.
func NewEnrichmentService(
	repo port.SessionRepository,
	gate CredentialGate,
	scraper port.Scraper,
	extractor port.FieldExtractor,
	locks *SessionLocker,
	cfg EnrichmentConfig,
	log *logger.Logger,
) EnrichmentService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &enrichmentService{
		repo:      repo,
		gate:      gate,
		scraper:   scraper,
		extractor: extractor,
		locks:     locks,
		cfg:       cfg,
		log:       log.With("service", "EnrichmentService"),
	}
}

// Enrich runs under the session lock, so other operations on the same session
// wait until every row has finished.
func (s *enrichmentService) Enrich(ctx context.Context, clientID, sessionID uuid.UUID) ([]domain.RowResult, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.repo.GetByID(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepEnrichment || session.Input == nil {
		return nil, domain.ErrInvalidTransition
	}

	creds, err := s.gate.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	rows := session.Input.Rows
	results := make([]domain.RowResult, len(rows))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i := range rows {
		g.Go(func() error {
			results[i] = s.enrichRow(runCtx, i, rows[i], session, creds)
			return nil
		})
	}
	_ = g.Wait()

	// Partial results are kept even when the caller has gone away.
	session.Results = results
	if err := s.repo.Update(context.WithoutCancel(ctx), session); err != nil {
		return nil, fmt.Errorf("enrichment.Enrich: saving results: %w", err)
	}

	completed, skipped, failed := tally(results)
	s.log.Info("enrichment finished", "session_id", sessionID, "rows", len(rows),
		"completed", completed, "skipped", skipped, "failed", failed, "duration", time.Since(start))
	return results, nil
}

func (s *enrichmentService) enrichRow(
	ctx context.Context,
	index int,
	row domain.Row,
	session *domain.WizardSession,
	creds *domain.ResolvedCredentials,
) domain.RowResult {
	address := strings.TrimSpace(row[session.EmailColumn])
	result := domain.RowResult{Index: index, Email: address}

	if err := ctx.Err(); err != nil {
		result.Status = domain.RowStatusError
		result.Error = err.Error()
		return result
	}

	companyDomain, err := EmailDomain(address)
	if err != nil {
		result.Status = domain.RowStatusSkipped
		result.Error = "invalid email address"
		return result
	}
	result.Domain = companyDomain
	if personalDomains[companyDomain] {
		result.Status = domain.RowStatusSkipped
		result.Error = "personal email domain"
		return result
	}

	page, err := s.scraper.Scrape(ctx, port.ScrapeInput{URL: "https://" + companyDomain, APIKey: creds.FirecrawlAPIKey})
	if err != nil {
		return s.rowFailed(result, "scrape", err)
	}
	if strings.TrimSpace(page.Markdown) == "" {
		return s.rowFailed(result, "scrape", errors.New("website returned no content"))
	}

	out, err := s.extractor.Extract(ctx, port.ExtractInput{
		APIKey:  creds.OpenAIAPIKey,
		Email:   address,
		Domain:  companyDomain,
		Content: llm.Truncate(page.Markdown, s.cfg.MaxContentChars),
		Fields:  session.Fields,
	})
	if err != nil {
		return s.rowFailed(result, "extract", err)
	}

	result.Status = domain.RowStatusCompleted
	result.Fields = out.Fields
	return result
}

func (s *enrichmentService) rowFailed(result domain.RowResult, stage string, err error) domain.RowResult {
	s.log.Warn("row enrichment failed", "row", result.Index, "domain", result.Domain, "stage", stage, "error", err)
	result.Status = domain.RowStatusError
	result.Error = fmt.Sprintf("%s: %v", stage, err)
	return result
}

// EmailDomain returns the lower-cased domain of a single email address.
func EmailDomain(address string) (string, error) {
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return "", err
	}
	at := strings.LastIndex(parsed.Address, "@")
	if at < 0 || at == len(parsed.Address)-1 {
		return "", fmt.Errorf("missing domain in %q", address)
	}
	d := strings.ToLower(parsed.Address[at+1:])
	if !strings.Contains(d, ".") {
		return "", fmt.Errorf("domain %q is not a public hostname", d)
	}
	return d, nil
}

func tally(results []domain.RowResult) (completed, skipped, failed int) {
	for _, r := range results {
		switch r.Status {
		case domain.RowStatusCompleted:
			completed++
		case domain.RowStatusSkipped:
			skipped++
		case domain.RowStatusError:
			failed++
		}
	}
	return completed, skipped, failed
}

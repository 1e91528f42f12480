package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
	"fireenrich/internal/service"
	"fireenrich/mocks"
)

type enrichFixture struct {
	repo      *mocks.MockSessionRepo
	gate      *mocks.MockCredentialGate
	scraper   *mocks.MockScraper
	extractor *mocks.MockFieldExtractor
	svc       service.EnrichmentService
	client    uuid.UUID
	session   *domain.WizardSession
}

func newEnrichFixture(concurrency int, rows ...domain.Row) *enrichFixture {
	f := &enrichFixture{
		repo:      new(mocks.MockSessionRepo),
		gate:      new(mocks.MockCredentialGate),
		scraper:   new(mocks.MockScraper),
		extractor: new(mocks.MockFieldExtractor),
		client:    uuid.New(),
	}
	f.session = &domain.WizardSession{
		ID:          uuid.New(),
		ClientID:    f.client,
		Step:        domain.StepEnrichment,
		Input:       &domain.TabularInput{Columns: []string{"name", "email"}, Rows: rows},
		EmailColumn: "email",
		Fields:      sampleFields(),
	}
	f.svc = service.NewEnrichmentService(f.repo, f.gate, f.scraper, f.extractor, service.NewSessionLocker(),
		service.EnrichmentConfig{Concurrency: concurrency, MaxContentChars: 10}, logger.NewNop())
	return f
}

func (f *enrichFixture) expectSession() {
	f.repo.On("GetByID", mock.Anything, f.client, f.session.ID).Return(f.session, nil)
	f.gate.On("Resolve", mock.Anything, f.client).
		Return(&domain.ResolvedCredentials{FirecrawlAPIKey: "fc", OpenAIAPIKey: "sk"}, nil)
}

func page(markdown string) *port.ScrapeOutput {
	return &port.ScrapeOutput{Markdown: markdown}
}

func TestEnrichment_Enrich_MixedRows(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newEnrichFixture(3,
		domain.Row{"name": "Ada", "email": "Ada <ada@Acme.io>"},
		domain.Row{"name": "Bob", "email": "bob@gmail.com"},
		domain.Row{"name": "Cy", "email": "not-an-email"},
		domain.Row{"name": "Di", "email": "di@globex.com"},
		domain.Row{"name": "Ed", "email": "ed@initech.com"},
	)
	f.expectSession()

	f.scraper.On("Scrape", mock.Anything, port.ScrapeInput{URL: "https://acme.io", APIKey: "fc"}).
		Return(page("Acme builds rockets and boosters"), nil)
	f.scraper.On("Scrape", mock.Anything, port.ScrapeInput{URL: "https://globex.com", APIKey: "fc"}).
		Return(nil, errors.New("timeout"))
	f.scraper.On("Scrape", mock.Anything, port.ScrapeInput{URL: "https://initech.com", APIKey: "fc"}).
		Return(page("   "), nil)

	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return in.Domain == "acme.io" && in.APIKey == "sk" && in.Content == "Acme build..." && len(in.Fields) == 2
	})).Return(&port.ExtractOutput{Fields: map[string]domain.FieldValue{
		"industry": {Value: "Aerospace", Confidence: 0.9},
	}}, nil)

	var saved *domain.WizardSession
	f.repo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.WizardSession)
	}).Return(nil)

	results, err := f.svc.Enrich(context.Background(), f.client, f.session.ID)

	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}

	assert.Equal(t, domain.RowStatusCompleted, results[0].Status)
	assert.Equal(t, "acme.io", results[0].Domain)
	assert.Equal(t, "Aerospace", results[0].Fields["industry"].Value)

	assert.Equal(t, domain.RowStatusSkipped, results[1].Status)
	assert.Equal(t, "personal email domain", results[1].Error)

	assert.Equal(t, domain.RowStatusSkipped, results[2].Status)
	assert.Equal(t, "invalid email address", results[2].Error)

	assert.Equal(t, domain.RowStatusError, results[3].Status)
	assert.Contains(t, results[3].Error, "scrape: timeout")

	assert.Equal(t, domain.RowStatusError, results[4].Status)
	assert.Contains(t, results[4].Error, "no content")

	require.NotNil(t, saved)
	assert.Equal(t, results, saved.Results)
}

func TestEnrichment_Enrich_ExtractFailureIsRecordedOnRow(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newEnrichFixture(1, domain.Row{"email": "ada@acme.io"})
	f.expectSession()
	f.scraper.On("Scrape", mock.Anything, mock.Anything).Return(page("content"), nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredential)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	results, err := f.svc.Enrich(context.Background(), f.client, f.session.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.RowStatusError, results[0].Status)
	assert.Contains(t, results[0].Error, "extract:")
}

func TestEnrichment_Enrich_RespectsConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	rows := make([]domain.Row, 12)
	for i := range rows {
		rows[i] = domain.Row{"email": "x@company" + string(rune('a'+i)) + ".com"}
	}
	f := newEnrichFixture(2, rows...)
	f.expectSession()

	var active, peak int32
	f.scraper.On("Scrape", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&active, -1)
	}).Return(page("content"), nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(&port.ExtractOutput{}, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	results, err := f.svc.Enrich(context.Background(), f.client, f.session.ID)

	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestEnrichment_Enrich_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newEnrichFixture(2, domain.Row{"email": "ada@acme.io"}, domain.Row{"email": "bob@globex.com"})
	f.expectSession()

	var saveErr error
	var saved *domain.WizardSession
	f.repo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saveErr = args.Get(0).(context.Context).Err()
		saved = args.Get(1).(*domain.WizardSession)
	}).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := f.svc.Enrich(ctx, f.client, f.session.ID)

	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, domain.RowStatusError, r.Status)
	}
	assert.NoError(t, saveErr, "results are saved with a live context")
	require.NotNil(t, saved)
	assert.Len(t, saved.Results, 2)
	f.scraper.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything)
}

func TestEnrichment_Enrich_RunTimeoutStopsSlowRows(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newEnrichFixture(1, domain.Row{"email": "ada@acme.io"}, domain.Row{"email": "bob@globex.com"})
	f.svc = service.NewEnrichmentService(f.repo, f.gate, f.scraper, f.extractor, service.NewSessionLocker(),
		service.EnrichmentConfig{Concurrency: 1, RunTimeout: 50 * time.Millisecond}, logger.NewNop())
	f.expectSession()

	f.scraper.On("Scrape", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded).Once()

	var saved *domain.WizardSession
	f.repo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.WizardSession)
	}).Return(nil)

	results, err := f.svc.Enrich(context.Background(), f.client, f.session.ID)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.RowStatusError, results[0].Status)
	assert.Contains(t, results[0].Error, "scrape:")
	assert.Equal(t, domain.RowStatusError, results[1].Status)
	assert.Contains(t, results[1].Error, "deadline exceeded")
	require.NotNil(t, saved)
	assert.Len(t, saved.Results, 2)
	f.scraper.AssertNumberOfCalls(t, "Scrape", 1)
}

func TestEnrichment_Enrich_WrongStep(t *testing.T) {
	f := newEnrichFixture(1, domain.Row{"email": "ada@acme.io"})
	f.session.Step = domain.StepSetup
	f.repo.On("GetByID", mock.Anything, f.client, f.session.ID).Return(f.session, nil)

	_, err := f.svc.Enrich(context.Background(), f.client, f.session.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.gate.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestEnrichment_Enrich_CredentialsRequired(t *testing.T) {
	f := newEnrichFixture(1, domain.Row{"email": "ada@acme.io"})
	f.repo.On("GetByID", mock.Anything, f.client, f.session.ID).Return(f.session, nil)
	f.gate.On("Resolve", mock.Anything, f.client).Return(nil, domain.ErrCredentialsRequired)

	_, err := f.svc.Enrich(context.Background(), f.client, f.session.ID)

	assert.ErrorIs(t, err, domain.ErrCredentialsRequired)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ada@acme.io", "acme.io", false},
		{"Ada Lovelace <ADA@Acme.IO>", "acme.io", false},
		{"ada@localhost", "", true},
		{"ada", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := service.EmailDomain(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

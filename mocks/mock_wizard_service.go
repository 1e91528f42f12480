package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fireenrich/internal/domain"
	"fireenrich/internal/service"
)

// MockWizardService is a mock implementation of service.WizardService.
type MockWizardService struct {
	mock.Mock
}

func (m *MockWizardService) session(args mock.Arguments) (*domain.WizardSession, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WizardSession), args.Error(1)
}

func (m *MockWizardService) Create(ctx context.Context, clientID uuid.UUID) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID))
}

func (m *MockWizardService) Get(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID, sessionID))
}

func (m *MockWizardService) Upload(ctx context.Context, clientID, sessionID uuid.UUID, input *domain.TabularInput) (*service.UploadOutcome, error) {
	args := m.Called(ctx, clientID, sessionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadOutcome), args.Error(1)
}

func (m *MockWizardService) SubmitCredentials(ctx context.Context, clientID, sessionID uuid.UUID, sub service.CredentialSubmission) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID, sessionID, sub))
}

func (m *MockWizardService) DismissCredentialPrompt(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID, sessionID))
}

func (m *MockWizardService) StartEnrichment(ctx context.Context, clientID, sessionID uuid.UUID, emailColumn string, fields []domain.EnrichmentField) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID, sessionID, emailColumn, fields))
}

func (m *MockWizardService) Back(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID, sessionID))
}

func (m *MockWizardService) Reset(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return m.session(m.Called(ctx, clientID, sessionID))
}

func (m *MockWizardService) Delete(ctx context.Context, clientID, sessionID uuid.UUID) error {
	args := m.Called(ctx, clientID, sessionID)
	return args.Error(0)
}

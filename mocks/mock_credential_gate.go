package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fireenrich/internal/domain"
	"fireenrich/internal/service"
)

// MockCredentialGate is a mock implementation of service.CredentialGate.
type MockCredentialGate struct {
	mock.Mock
}

func (m *MockCredentialGate) Check(ctx context.Context, clientID uuid.UUID) domain.CredentialAvailability {
	args := m.Called(ctx, clientID)
	return args.Get(0).(domain.CredentialAvailability)
}

func (m *MockCredentialGate) Submit(ctx context.Context, clientID uuid.UUID, sub service.CredentialSubmission) error {
	args := m.Called(ctx, clientID, sub)
	return args.Error(0)
}

func (m *MockCredentialGate) Resolve(ctx context.Context, clientID uuid.UUID) (*domain.ResolvedCredentials, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedCredentials), args.Error(1)
}

func (m *MockCredentialGate) Clear(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

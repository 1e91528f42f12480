package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fireenrich/internal/domain"
)

// MockSessionRepo is a mock implementation of port.SessionRepository.
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, session *domain.WizardSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	args := m.Called(ctx, clientID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WizardSession), args.Error(1)
}

func (m *MockSessionRepo) Update(ctx context.Context, session *domain.WizardSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) Delete(ctx context.Context, clientID, sessionID uuid.UUID) error {
	args := m.Called(ctx, clientID, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

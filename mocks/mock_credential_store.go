package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore is a mock implementation of port.CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Get(ctx context.Context, clientID uuid.UUID, name string) (string, bool, error) {
	args := m.Called(ctx, clientID, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCredentialStore) Set(ctx context.Context, clientID uuid.UUID, name, value string) error {
	args := m.Called(ctx, clientID, name, value)
	return args.Error(0)
}

func (m *MockCredentialStore) Delete(ctx context.Context, clientID uuid.UUID, names ...string) error {
	args := m.Called(ctx, clientID, names)
	return args.Error(0)
}

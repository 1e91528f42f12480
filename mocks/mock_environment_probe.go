package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fireenrich/internal/domain"
)

// MockEnvironmentProbe is a mock implementation of port.EnvironmentProbe.
type MockEnvironmentProbe struct {
	mock.Mock
}

func (m *MockEnvironmentProbe) Status(ctx context.Context) (*domain.EnvironmentStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnvironmentStatus), args.Error(1)
}

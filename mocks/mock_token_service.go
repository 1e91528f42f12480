package mocks

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fireenrich/internal/service"
)

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue() (*service.ClientToken, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClientToken), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (uuid.UUID, error) {
	args := m.Called(tokenString)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fireenrich/internal/domain"
	"fireenrich/internal/service"
)

// MockEnrichmentService is a mock implementation of service.EnrichmentService.
type MockEnrichmentService struct {
	mock.Mock
}

func (m *MockEnrichmentService) Enrich(ctx context.Context, clientID, sessionID uuid.UUID) ([]domain.RowResult, error) {
	args := m.Called(ctx, clientID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RowResult), args.Error(1)
}

// MockExportService is a mock implementation of service.ExportService.
// A successful Export also writes "payload" to w.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, clientID, sessionID uuid.UUID, format service.ExportFormat, w io.Writer) (string, error) {
	args := m.Called(ctx, clientID, sessionID, format, w)
	if args.Error(1) == nil {
		_, _ = io.WriteString(w, "payload")
	}
	return args.String(0), args.Error(1)
}

func (m *MockExportService) Archive(ctx context.Context, clientID, sessionID uuid.UUID) (*service.ArchiveOutput, error) {
	args := m.Called(ctx, clientID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArchiveOutput), args.Error(1)
}

package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fireenrich/internal/csvexport"
	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
	"fireenrich/internal/service"
	"fireenrich/mocks"
)

func enrichedSession(client uuid.UUID) *domain.WizardSession {
	return &domain.WizardSession{
		ID:          uuid.New(),
		ClientID:    client,
		Step:        domain.StepEnrichment,
		Input:       sampleInput(),
		EmailColumn: "email",
		Fields:      sampleFields(),
		Results: []domain.RowResult{
			{Index: 0, Status: domain.RowStatusCompleted, Fields: map[string]domain.FieldValue{
				"industry": {Value: "Aerospace"}, "employee_count": {Value: float64(40)},
			}},
		},
	}
}

func TestExportService_Export_CSV(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	client := uuid.New()
	s := enrichedSession(client)
	repo.On("GetByID", mock.Anything, client, s.ID).Return(s, nil)
	svc := service.NewExportService(repo, nil, service.ArchiveConfig{}, logger.NewNop())

	var buf bytes.Buffer
	filename, err := svc.Export(context.Background(), client, s.ID, service.ExportCSV, &buf)

	require.NoError(t, err)
	assert.Contains(t, filename, ".csv")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), csvexport.BOM))
	assert.Contains(t, buf.String(), "name,email,Industry,employee_count")
	assert.Contains(t, buf.String(), "Ada,ada@acme.io,Aerospace,40")
}

func TestExportService_Export_XLSX(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	client := uuid.New()
	s := enrichedSession(client)
	repo.On("GetByID", mock.Anything, client, s.ID).Return(s, nil)
	svc := service.NewExportService(repo, nil, service.ArchiveConfig{}, logger.NewNop())

	var buf bytes.Buffer
	filename, err := svc.Export(context.Background(), client, s.ID, service.ExportXLSX, &buf)

	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestExportService_Export_Errors(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	client := uuid.New()
	s := enrichedSession(client)
	setup := &domain.WizardSession{ID: uuid.New(), ClientID: client, Step: domain.StepSetup, Input: sampleInput()}
	repo.On("GetByID", mock.Anything, client, s.ID).Return(s, nil)
	repo.On("GetByID", mock.Anything, client, setup.ID).Return(setup, nil)
	svc := service.NewExportService(repo, nil, service.ArchiveConfig{}, logger.NewNop())

	_, err := svc.Export(context.Background(), client, s.ID, "pdf", &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = svc.Export(context.Background(), client, setup.ID, service.ExportCSV, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestExportService_Archive(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	storage := new(mocks.MockObjectStorage)
	client := uuid.New()
	s := enrichedSession(client)
	repo.On("GetByID", mock.Anything, client, s.ID).Return(s, nil)

	var key string
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		key = in.Key
		return in.Bucket == "exports" && in.ContentType == "text/csv; charset=utf-8"
	})).Return(&port.UploadOutput{ETag: "e"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "exports", mock.Anything, int64(600)).
		Return("https://s3.example/exports/x?sig", nil)

	svc := service.NewExportService(repo, storage, service.ArchiveConfig{Bucket: "exports", PresignExpiry: 600}, logger.NewNop())
	out, err := svc.Archive(context.Background(), client, s.ID)

	require.NoError(t, err)
	assert.Equal(t, key, out.Key)
	assert.Contains(t, out.Key, "exports/"+client.String()+"/"+s.ID.String()+"/")
	assert.Equal(t, "https://s3.example/exports/x?sig", out.URL)
	storage.AssertExpectations(t)
}

func TestExportService_Archive_Disabled(t *testing.T) {
	svc := service.NewExportService(new(mocks.MockSessionRepo), nil, service.ArchiveConfig{}, logger.NewNop())

	_, err := svc.Archive(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
}

func TestExportService_Archive_UploadFailure(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	storage := new(mocks.MockObjectStorage)
	client := uuid.New()
	s := enrichedSession(client)
	repo.On("GetByID", mock.Anything, client, s.ID).Return(s, nil)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	svc := service.NewExportService(repo, storage, service.ArchiveConfig{Bucket: "exports"}, logger.NewNop())
	_, err := svc.Archive(context.Background(), client, s.ID)

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
}

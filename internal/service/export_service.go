package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"fireenrich/internal/csvexport"
	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
)

// ExportFormat selects the file type of an export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ArchiveOutput points at an uploaded CSV export.
type ArchiveOutput struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ArchiveConfig holds the bucket and link lifetime for archived exports.
type ArchiveConfig struct {
	Bucket        string
	PresignExpiry int64
}

// ExportService renders enriched sessions as spreadsheets.
type ExportService interface {
	Export(ctx context.Context, clientID, sessionID uuid.UUID, format ExportFormat, w io.Writer) (filename string, err error)
	Archive(ctx context.Context, clientID, sessionID uuid.UUID) (*ArchiveOutput, error)
}

type exportService struct {
	repo    port.SessionRepository
	storage port.ObjectStorage
	cfg     ArchiveConfig
	log     *logger.Logger
}

// NewExportService creates a new ExportService. storage may be nil, in which
// case Archive reports ErrStorageDisabled.
func NewExportService(repo port.SessionRepository, storage port.ObjectStorage, cfg ArchiveConfig, log *logger.Logger) ExportService {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 3600
	}
	return &exportService{
		repo:    repo,
		storage: storage,
		cfg:     cfg,
		log:     log.With("service", "ExportService"),
	}
}

func (s *exportService) table(ctx context.Context, clientID, sessionID uuid.UUID) (*csvexport.Table, error) {
	session, err := s.repo.GetByID(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepEnrichment || session.Input == nil {
		return nil, domain.ErrInvalidTransition
	}
	return csvexport.BuildTable(session.Input, session.Fields, session.Results), nil
}

func (s *exportService) Export(ctx context.Context, clientID, sessionID uuid.UUID, format ExportFormat, w io.Writer) (string, error) {
	t, err := s.table(ctx, clientID, sessionID)
	if err != nil {
		return "", err
	}

	switch format {
	case ExportCSV:
		err = csvexport.WriteCSV(w, t)
	case ExportXLSX:
		err = csvexport.WriteXLSX(w, t)
	default:
		return "", fmt.Errorf("%w: export format %q", domain.ErrUnsupportedFileType, format)
	}
	if err != nil {
		return "", fmt.Errorf("export.Export: %w", err)
	}
	return csvexport.BuildFilename("enriched_"+sessionID.String()[:8], string(format)), nil
}

func (s *exportService) Archive(ctx context.Context, clientID, sessionID uuid.UUID) (*ArchiveOutput, error) {
	if s.storage == nil || s.cfg.Bucket == "" {
		return nil, domain.ErrStorageDisabled
	}

	var buf bytes.Buffer
	filename, err := s.Export(ctx, clientID, sessionID, ExportCSV, &buf)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s/%s", clientID, sessionID, filename)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        &buf,
		ContentType: ExportCSV.ContentType(),
		Filename:    filename,
	}); err != nil {
		s.log.Error("archive upload failed", "session_id", sessionID, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("export.Archive: %w", err)
	}

	s.log.Info("export archived", "session_id", sessionID, "key", key)
	return &ArchiveOutput{
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.PresignExpiry) * time.Second),
	}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fireenrich/internal/domain"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
	"fireenrich/internal/presets"
)

// UploadOutcome is the result of handing a parsed spreadsheet to the wizard.
// When PromptRequired is set the input is held back until credentials arrive.
type UploadOutcome struct {
	Session        *domain.WizardSession         `json:"session"`
	Availability   domain.CredentialAvailability `json:"availability"`
	PromptRequired bool                          `json:"prompt_required"`
}

// WizardService drives the upload → setup → enrichment state machine.
type WizardService interface {
	Create(ctx context.Context, clientID uuid.UUID) (*domain.WizardSession, error)
	Get(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error)
	Upload(ctx context.Context, clientID, sessionID uuid.UUID, input *domain.TabularInput) (*UploadOutcome, error)
	SubmitCredentials(ctx context.Context, clientID, sessionID uuid.UUID, sub CredentialSubmission) (*domain.WizardSession, error)
	DismissCredentialPrompt(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error)
	StartEnrichment(ctx context.Context, clientID, sessionID uuid.UUID, emailColumn string, fields []domain.EnrichmentField) (*domain.WizardSession, error)
	Back(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error)
	Reset(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error)
	Delete(ctx context.Context, clientID, sessionID uuid.UUID) error
}

type wizardService struct {
	repo  port.SessionRepository
	gate  CredentialGate
	locks *SessionLocker
	log   *logger.Logger
}

// NewWizardService creates a new WizardService implementation.
func NewWizardService(
	repo port.SessionRepository,
	gate CredentialGate,
	locks *SessionLocker,
	log *logger.Logger,
) WizardService {
	return &wizardService{
		repo:  repo,
		gate:  gate,
		locks: locks,
		log:   log.With("service", "WizardService"),
	}
}

func (s *wizardService) Create(ctx context.Context, clientID uuid.UUID) (*domain.WizardSession, error) {
	session := &domain.WizardSession{
		ID:       uuid.New(),
		ClientID: clientID,
		Step:     domain.StepUpload,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("wizard.Create: %w", err)
	}
	s.log.Info("session created", "session_id", session.ID, "client_id", clientID)
	return session, nil
}

func (s *wizardService) Get(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return s.repo.GetByID(ctx, clientID, sessionID)
}

// mutate loads the session under its lock, applies fn and saves the result.
func (s *wizardService) mutate(
	ctx context.Context,
	clientID, sessionID uuid.UUID,
	fn func(session *domain.WizardSession) error,
) (*domain.WizardSession, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.repo.GetByID(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("wizard: saving session: %w", err)
	}
	return session, nil
}

func (s *wizardService) Upload(ctx context.Context, clientID, sessionID uuid.UUID, input *domain.TabularInput) (*UploadOutcome, error) {
	outcome := &UploadOutcome{}
	session, err := s.mutate(ctx, clientID, sessionID, func(session *domain.WizardSession) error {
		if session.Step != domain.StepUpload {
			return domain.ErrInvalidTransition
		}
		if input.IsEmpty() {
			return domain.ErrEmptyInput
		}

		avail := s.gate.Check(ctx, clientID)
		outcome.Availability = avail
		if avail.Ready() {
			session.Input = input
			session.PendingInput = nil
			session.CredentialPrompt = nil
			session.Step = domain.StepSetup
			return nil
		}

		missing := avail.Missing()
		session.PendingInput = input
		session.CredentialPrompt = &missing
		outcome.PromptRequired = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.Session = session
	s.log.Info("upload accepted", "session_id", sessionID,
		"rows", len(input.Rows), "step", session.Step, "prompt_required", outcome.PromptRequired)
	return outcome, nil
}

func (s *wizardService) SubmitCredentials(ctx context.Context, clientID, sessionID uuid.UUID, sub CredentialSubmission) (*domain.WizardSession, error) {
	return s.mutate(ctx, clientID, sessionID, func(session *domain.WizardSession) error {
		if session.Step != domain.StepUpload || session.PendingInput == nil {
			return domain.ErrInvalidTransition
		}
		if err := s.gate.Submit(ctx, clientID, sub); err != nil {
			return err
		}

		if !s.gate.Check(ctx, clientID).Ready() {
			return domain.ErrCredentialsRequired
		}

		session.Input = session.PendingInput
		session.PendingInput = nil
		session.CredentialPrompt = nil
		session.Step = domain.StepSetup
		return nil
	})
}

func (s *wizardService) DismissCredentialPrompt(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return s.mutate(ctx, clientID, sessionID, func(session *domain.WizardSession) error {
		if session.Step != domain.StepUpload {
			return domain.ErrInvalidTransition
		}
		session.PendingInput = nil
		session.CredentialPrompt = nil
		return nil
	})
}

func (s *wizardService) StartEnrichment(
	ctx context.Context,
	clientID, sessionID uuid.UUID,
	emailColumn string,
	fields []domain.EnrichmentField,
) (*domain.WizardSession, error) {
	return s.mutate(ctx, clientID, sessionID, func(session *domain.WizardSession) error {
		if session.Step != domain.StepSetup {
			return domain.ErrInvalidTransition
		}
		if !session.Input.HasColumn(emailColumn) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownColumn, emailColumn)
		}
		selected, err := normalizeFields(fields)
		if err != nil {
			return err
		}

		session.EmailColumn = emailColumn
		session.Fields = selected
		session.Results = nil
		session.Step = domain.StepEnrichment
		return nil
	})
}

func normalizeFields(fields []domain.EnrichmentField) ([]domain.EnrichmentField, error) {
	if len(fields) == 0 {
		return nil, domain.ErrNoFieldsSelected
	}
	out := make([]domain.EnrichmentField, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Type == "" {
			f.Type = domain.FieldTypeString
		}
		if err := presets.ValidateField(f); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", domain.ErrInvalidField, f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out, nil
}

func (s *wizardService) Back(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return s.mutate(ctx, clientID, sessionID, func(session *domain.WizardSession) error {
		switch session.Step {
		case domain.StepSetup:
			session.Input = nil
			session.PendingInput = nil
			session.CredentialPrompt = nil
			session.ClearSetup()
			session.Step = domain.StepUpload
		case domain.StepEnrichment:
			session.ClearSetup()
			session.Step = domain.StepSetup
		default:
			return domain.ErrInvalidTransition
		}
		return nil
	})
}

func (s *wizardService) Reset(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	return s.mutate(ctx, clientID, sessionID, func(session *domain.WizardSession) error {
		if session.Step != domain.StepEnrichment {
			return domain.ErrInvalidTransition
		}
		session.Input = nil
		session.PendingInput = nil
		session.CredentialPrompt = nil
		session.ClearSetup()
		session.Step = domain.StepUpload
		return nil
	})
}

// Delete waits for any running operation on the session, then removes it.
// Stored credentials belong to the client and are kept.
func (s *wizardService) Delete(ctx context.Context, clientID, sessionID uuid.UUID) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.repo.Delete(ctx, clientID, sessionID); err != nil {
		return err
	}
	s.log.Info("session deleted", "session_id", sessionID, "client_id", clientID)
	return nil
}

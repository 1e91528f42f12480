package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fireenrich/internal/domain"
	"fireenrich/internal/port"
)

type sessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a new PostgreSQL-backed SessionRepository.
func NewSessionRepo(db *sqlx.DB) port.SessionRepository {
	return &sessionRepo{db: db}
}

// sessionRow mirrors the wizard_sessions table. Structured parts are JSONB.
type sessionRow struct {
	ID               uuid.UUID         `db:"id"`
	ClientID         uuid.UUID         `db:"client_id"`
	Step             domain.WizardStep `db:"step"`
	Input            []byte            `db:"input"`
	PendingInput     []byte            `db:"pending_input"`
	CredentialPrompt []byte            `db:"credential_prompt"`
	EmailColumn      string            `db:"email_column"`
	Fields           []byte            `db:"fields"`
	Results          []byte            `db:"results"`
	CreatedAt        time.Time         `db:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at"`
}

func marshalNullable(v interface{}, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

func marshalList(v interface{}, n int) ([]byte, error) {
	if n == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

func toRow(s *domain.WizardSession) (*sessionRow, error) {
	row := &sessionRow{
		ID:          s.ID,
		ClientID:    s.ClientID,
		Step:        s.Step,
		EmailColumn: s.EmailColumn,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	var err error
	if row.Input, err = marshalNullable(s.Input, s.Input == nil); err != nil {
		return nil, fmt.Errorf("marshaling input: %w", err)
	}
	if row.PendingInput, err = marshalNullable(s.PendingInput, s.PendingInput == nil); err != nil {
		return nil, fmt.Errorf("marshaling pending input: %w", err)
	}
	if row.CredentialPrompt, err = marshalNullable(s.CredentialPrompt, s.CredentialPrompt == nil); err != nil {
		return nil, fmt.Errorf("marshaling credential prompt: %w", err)
	}
	if row.Fields, err = marshalList(s.Fields, len(s.Fields)); err != nil {
		return nil, fmt.Errorf("marshaling fields: %w", err)
	}
	if row.Results, err = marshalList(s.Results, len(s.Results)); err != nil {
		return nil, fmt.Errorf("marshaling results: %w", err)
	}
	return row, nil
}

func (row *sessionRow) toDomain() (*domain.WizardSession, error) {
	s := &domain.WizardSession{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Step:        row.Step,
		EmailColumn: row.EmailColumn,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Input) > 0 {
		s.Input = &domain.TabularInput{}
		if err := json.Unmarshal(row.Input, s.Input); err != nil {
			return nil, fmt.Errorf("unmarshaling input: %w", err)
		}
	}
	if len(row.PendingInput) > 0 {
		s.PendingInput = &domain.TabularInput{}
		if err := json.Unmarshal(row.PendingInput, s.PendingInput); err != nil {
			return nil, fmt.Errorf("unmarshaling pending input: %w", err)
		}
	}
	if len(row.CredentialPrompt) > 0 {
		s.CredentialPrompt = &domain.CredentialPrompt{}
		if err := json.Unmarshal(row.CredentialPrompt, s.CredentialPrompt); err != nil {
			return nil, fmt.Errorf("unmarshaling credential prompt: %w", err)
		}
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &s.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields: %w", err)
		}
	}
	if len(row.Results) > 0 {
		if err := json.Unmarshal(row.Results, &s.Results); err != nil {
			return nil, fmt.Errorf("unmarshaling results: %w", err)
		}
	}
	if len(s.Fields) == 0 {
		s.Fields = nil
	}
	if len(s.Results) == 0 {
		s.Results = nil
	}
	return s, nil
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.WizardSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	row, err := toRow(session)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}

	query := `INSERT INTO wizard_sessions
		(id, client_id, step, input, pending_input, credential_prompt,
		 email_column, fields, results, created_at, updated_at)
		VALUES (:id, :client_id, :step, :input, :pending_input, :credential_prompt,
		 :email_column, :fields, :results, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM wizard_sessions WHERE id = $1 AND client_id = $2", sessionID, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}
	s, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *domain.WizardSession) error {
	session.UpdatedAt = time.Now().UTC()

	row, err := toRow(session)
	if err != nil {
		return fmt.Errorf("sessionRepo.Update: %w", err)
	}

	query := `UPDATE wizard_sessions SET
		step = :step, input = :input, pending_input = :pending_input,
		credential_prompt = :credential_prompt, email_column = :email_column,
		fields = :fields, results = :results, updated_at = :updated_at
		WHERE id = :id AND client_id = :client_id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("sessionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, clientID, sessionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM wizard_sessions WHERE id = $1 AND client_id = $2", sessionID, clientID)
	if err != nil {
		return fmt.Errorf("sessionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

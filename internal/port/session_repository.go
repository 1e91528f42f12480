package port

import (
	"context"

	"github.com/google/uuid"

	"fireenrich/internal/domain"
)

// SessionRepository defines the contract for wizard session persistence.
// Lookups are scoped by clientID; a session owned by another client is reported as not found.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WizardSession) error
	GetByID(ctx context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error)
	Update(ctx context.Context, session *domain.WizardSession) error
	Delete(ctx context.Context, clientID, sessionID uuid.UUID) error
	Ping(ctx context.Context) error
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fireenrich/internal/domain"
	"fireenrich/internal/port"
)

type sessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.WizardSession
}

// NewSessionRepo creates an in-process SessionRepository. Stored sessions
// are copied on the way in and out so callers never share state with the map.
func NewSessionRepo() port.SessionRepository {
	return &sessionRepo{sessions: make(map[uuid.UUID]*domain.WizardSession)}
}

func (r *sessionRepo) Create(_ context.Context, session *domain.WizardSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, clientID, sessionID uuid.UUID) (*domain.WizardSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.ClientID != clientID {
		return nil, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *sessionRepo) Update(_ context.Context, session *domain.WizardSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sessions[session.ID]
	if !ok || existing.ClientID != session.ClientID {
		return domain.ErrSessionNotFound
	}
	session.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *sessionRepo) Delete(_ context.Context, clientID, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.ClientID != clientID {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *sessionRepo) Ping(context.Context) error {
	return nil
}

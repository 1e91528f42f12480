package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fireenrich/internal/port"
)

// Store keeps client credentials in process memory. Contents are lost on restart.
type Store struct {
	mu   sync.RWMutex
	data map[uuid.UUID]map[string]string
}

// NewStore creates an empty in-memory credential store.
func NewStore() *Store {
	return &Store{data: make(map[uuid.UUID]map[string]string)}
}

var _ port.CredentialStore = (*Store)(nil)

func (s *Store) Get(_ context.Context, clientID uuid.UUID, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[clientID][name]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, clientID uuid.UUID, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[clientID]
	if !ok {
		ns = make(map[string]string)
		s.data[clientID] = ns
	}
	ns[name] = value
	return nil
}

// Delete removes the named entries, or the whole namespace when names is empty.
func (s *Store) Delete(_ context.Context, clientID uuid.UUID, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		delete(s.data, clientID)
		return nil
	}
	ns := s.data[clientID]
	for _, n := range names {
		delete(ns, n)
	}
	if len(ns) == 0 {
		delete(s.data, clientID)
	}
	return nil
}

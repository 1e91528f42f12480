package service

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLocker serializes operations on the same wizard session.
// Entries are dropped once no goroutine holds or waits for them.
type SessionLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionLocker creates an empty SessionLocker.
func NewSessionLocker() *SessionLocker {
	return &SessionLocker{locks: make(map[uuid.UUID]*sessionLock)}
}

// Lock blocks until the session is free and returns its unlock func.
func (l *SessionLocker) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

package session

import (
	"context"
	"sync"

	"psx_backend/internal/feature/auth/domain/entity"
	"psx_backend/internal/feature/auth/usecase"
)

// SessionMemory is a process-local SessionRepository used when Redis is
// unavailable. Sessions do not survive a restart.
type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
}

var _ usecase.SessionRepository = (*SessionMemory)(nil)

// NewSessionMemory creates an empty in-memory session store.
func NewSessionMemory() *SessionMemory {
	return &SessionMemory{sessions: map[string]entity.Session{}}
}

func (r *SessionMemory) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = *session
	return nil
}

func (r *SessionMemory) FindByToken(_ context.Context, token string) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	if !ok || s.IsExpired() {
		return nil, usecase.ErrInvalidRefreshToken
	}
	return &s, nil
}

func (r *SessionMemory) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return usecase.ErrInvalidRefreshToken
	}
	delete(r.sessions, token)
	return nil
}

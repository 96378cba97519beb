// Package memory provides in-process repository implementations for tests
// and for clients that must not touch disk.
package memory

import (
	"context"
	"sync"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/repository"
)

type SessionRepository struct {
	mu      sync.Mutex
	session domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Init(context.Context) error { return nil }

func (r *SessionRepository) Load(context.Context) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(), nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session == nil {
		r.session = domain.Session{}
		return nil
	}
	r.session = domain.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}
	if session.User != nil {
		u := *session.User
		r.session.User = &u
	}
	return nil
}

func (r *SessionRepository) SetTokens(_ context.Context, accessToken, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.AccessToken = accessToken
	r.session.RefreshToken = refreshToken
	return nil
}

func (r *SessionRepository) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = domain.Session{}
	return nil
}

func (r *SessionRepository) snapshot() *domain.Session {
	s := &domain.Session{
		AccessToken:  r.session.AccessToken,
		RefreshToken: r.session.RefreshToken,
	}
	if r.session.User != nil {
		u := *r.session.User
		s.User = &u
	}
	return s
}

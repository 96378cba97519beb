package repository

import (
	"context"

	"marketplace-admin/internal/domain"
)

// SessionRepository holds the single persisted client session. Load returns
// an empty session, never nil, when nothing has been stored.
type SessionRepository interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

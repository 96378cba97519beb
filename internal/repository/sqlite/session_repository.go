package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/repository"
)

// The sessions table holds at most one row, keyed 1.
const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	user_id TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL
);
`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	var (
		userID, fullName, email string
		session                 domain.Session
	)
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, full_name, email, access_token, refresh_token
FROM sessions
WHERE id = 1`).Scan(&userID, &fullName, &email, &session.AccessToken, &session.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Session{}, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if userID != "" || email != "" {
		session.User = &domain.SessionUser{ID: userID, FullName: fullName, Email: email}
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return r.Clear(ctx)
	}
	var user domain.SessionUser
	if session.User != nil {
		user = *session.User
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, full_name, email, access_token, refresh_token, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	user_id = excluded.user_id,
	full_name = excluded.full_name,
	email = excluded.email,
	access_token = excluded.access_token,
	refresh_token = excluded.refresh_token,
	updated_at = excluded.updated_at`,
		user.ID,
		user.FullName,
		user.Email,
		session.AccessToken,
		session.RefreshToken,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, access_token, refresh_token, updated_at)
VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	access_token = excluded.access_token,
	refresh_token = excluded.refresh_token,
	updated_at = excluded.updated_at`,
		accessToken,
		refreshToken,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set session tokens: %w", err)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"marketplace-admin/internal/domain"
)

// AdminRepository defines persistence operations for operator accounts.
type AdminRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, admin *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

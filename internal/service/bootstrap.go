package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-admin/internal/domain"
)

// Bootstrap makes sure the operator account exists, together with the user
// profile the /api/user/me endpoints serve, and optionally seeds the catalog.
func Bootstrap(ctx context.Context, auth AuthService, catalog *Catalog, email, password, fullName string, seed bool) (*domain.Admin, error) {
	admin, err := auth.EnsureAdmin(ctx, email, password, fullName)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	if _, err := catalog.GetUser(ctx, admin.ID); errors.Is(err, ErrNotFound) {
		created := admin.CreatedAt
		profile := domain.User{
			ID:         admin.ID,
			Role:       domain.UserRoleAdmin,
			FullName:   admin.FullName,
			Email:      admin.Email,
			IsVerified: true,
			CreatedAt:  &created,
			UpdatedAt:  &created,
		}
		if err := catalog.PutUser(ctx, profile); err != nil {
			return nil, fmt.Errorf("store admin profile: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if seed {
		if err := catalog.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}
	return admin, nil
}

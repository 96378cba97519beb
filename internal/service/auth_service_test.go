package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-admin/internal/forms"
	"marketplace-admin/internal/repository"
	"marketplace-admin/internal/token"
)

func newAuth(t *testing.T) (*authService, *token.Issuer) {
	t.Helper()
	issuer := token.NewIssuer("sandbox-secret", time.Minute, time.Hour)
	svc := NewAuthService(newFixtures(t).admins, issuer).(*authService)
	return svc, issuer
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)

	first, err := svc.EnsureAdmin(ctx, " Admin@Example.com ", "secret1", "Root")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", first.Email)
	assert.Empty(t, first.PasswordHash)

	second, err := svc.EnsureAdmin(ctx, "admin@example.com", "another", "Other")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.EnsureAdmin(ctx, "bad", "123", "")
	var errs forms.Errors
	assert.ErrorAs(t, err, &errs)
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newAuth(t)
	admin, err := svc.EnsureAdmin(ctx, "admin@example.com", "secret1", "Root")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ADMIN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, res.Admin.ID)

	claims, err := svc.Authorize(ctx, res.Pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, err = issuer.Verify(res.Pair.RefreshToken, token.KindRefresh)
	assert.NoError(t, err)

	_, err = svc.Authorize(ctx, res.Pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)
	_, err := svc.EnsureAdmin(ctx, "admin@example.com", "secret1", "Root")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesPair(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)
	_, err := svc.EnsureAdmin(ctx, "admin@example.com", "secret1", "Root")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "admin@example.com", "secret1")
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, res.Pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.Pair.AccessToken, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = svc.Refresh(ctx, res.Pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)
	_, err := svc.EnsureAdmin(ctx, "admin@example.com", "secret1", "Root")
	require.NoError(t, err)

	_, err = svc.ForgotPassword(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	code, err := svc.ForgotPassword(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 4)

	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}
	assert.ErrorIs(t, svc.ResetPassword(ctx, "admin@example.com", wrong, "newpass1"), ErrInvalidOTP)

	require.NoError(t, svc.ResetPassword(ctx, "admin@example.com", code, "newpass1"))
	// codes are single use
	assert.ErrorIs(t, svc.ResetPassword(ctx, "admin@example.com", code, "newpass2"), ErrInvalidOTP)

	_, err = svc.Login(ctx, "admin@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "admin@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestPasswordResetCodeExpires(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)
	_, err := svc.EnsureAdmin(ctx, "admin@example.com", "secret1", "Root")
	require.NoError(t, err)

	start := time.Now()
	svc.now = fixedClock(start)
	code, err := svc.ForgotPassword(ctx, "admin@example.com")
	require.NoError(t, err)

	svc.now = fixedClock(start.Add(otpTTL + time.Second))
	assert.ErrorIs(t, svc.ResetPassword(ctx, "admin@example.com", code, "newpass1"), ErrInvalidOTP)
}

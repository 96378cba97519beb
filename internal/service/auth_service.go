package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/forms"
	"marketplace-admin/internal/repository"
	"marketplace-admin/internal/token"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for missing, malformed or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidOTP is returned when a reset code is wrong or has expired.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
)

const otpTTL = 10 * time.Minute

// LoginResult is an authenticated admin with a fresh token pair.
type LoginResult struct {
	Admin *domain.Admin
	Pair  token.Pair
}

// AuthService describes operator sign-in and credential recovery.
type AuthService interface {
	EnsureAdmin(ctx context.Context, email, password, fullName string) (*domain.Admin, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	Authorize(ctx context.Context, accessToken string) (*token.Claims, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

type pendingOTP struct {
	code    string
	expires time.Time
}

type authService struct {
	admins repository.AdminRepository
	issuer *token.Issuer
	now    func() time.Time

	mu   sync.Mutex
	otps map[string]pendingOTP
}

func NewAuthService(admins repository.AdminRepository, issuer *token.Issuer) AuthService {
	return &authService{
		admins: admins,
		issuer: issuer,
		now:    time.Now,
		otps:   make(map[string]pendingOTP),
	}
}

// EnsureAdmin creates the operator account when it does not exist yet and
// returns the stored account either way.
func (s *authService) EnsureAdmin(ctx context.Context, email, password, fullName string) (*domain.Admin, error) {
	email = normalizeEmail(email)
	if err := forms.Validate(forms.Login{Email: email, Password: password}); err != nil {
		return nil, err
	}

	existing, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return sanitizeAdmin(existing), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	admin := &domain.Admin{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return sanitizeAdmin(admin), nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.Issue(subjectOf(admin))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Admin: sanitizeAdmin(admin), Pair: pair}, nil
}

// Refresh rotates both tokens. The admin is reloaded so a deleted account
// cannot keep refreshing.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	claims, err := s.issuer.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return token.Pair{}, ErrInvalidToken
	}
	admin, err := s.admins.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return token.Pair{}, ErrInvalidToken
		}
		return token.Pair{}, err
	}
	return s.issuer.Issue(subjectOf(admin))
}

func (s *authService) Authorize(_ context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.issuer.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ForgotPassword generates a 4 digit reset code for email. The sandbox has
// no mailer; the caller logs the code.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if err := forms.Validate(forms.ForgotPassword{Email: email}); err != nil {
		return "", err
	}
	if _, err := s.admins.GetByEmail(ctx, email); err != nil {
		return "", err
	}

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%04d", n.Int64())

	s.mu.Lock()
	s.otps[email] = pendingOTP{code: code, expires: s.now().Add(otpTTL)}
	s.mu.Unlock()
	return code, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email = normalizeEmail(email)
	if err := forms.Validate(forms.ResetPassword{
		Email:           email,
		OTP:             strings.TrimSpace(otp),
		Password:        newPassword,
		ConfirmPassword: newPassword,
	}); err != nil {
		return err
	}

	s.mu.Lock()
	pending, ok := s.otps[email]
	valid := ok && s.now().Before(pending.expires) &&
		subtle.ConstantTimeCompare([]byte(pending.code), []byte(strings.TrimSpace(otp))) == 1
	if valid {
		delete(s.otps, email)
	}
	s.mu.Unlock()
	if !valid {
		return ErrInvalidOTP
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.admins.UpdatePassword(ctx, admin.ID, string(hash))
}

func subjectOf(admin *domain.Admin) token.Subject {
	return token.Subject{
		ID:       admin.ID,
		Email:    admin.Email,
		FullName: admin.FullName,
		Role:     string(domain.UserRoleAdmin),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeAdmin(admin *domain.Admin) *domain.Admin {
	if admin == nil {
		return nil
	}
	return &domain.Admin{
		ID:        admin.ID,
		FullName:  admin.FullName,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
		UpdatedAt: admin.UpdatedAt,
	}
}

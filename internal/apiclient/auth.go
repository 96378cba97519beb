package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/token"
)

const (
	loginPath          = "/admin/auth/login"
	refreshPath        = "/api/auth/refresh"
	forgotPasswordPath = "/auth/forgot-password"
	resetPasswordPath  = "/auth/reset-password"
)

// AuthService signs operators in and out and renews their tokens.
type AuthService struct {
	client *Client
}

var _ Refresher = (*AuthService)(nil)

// loginResponse accepts tokens at the top level or under data; the backend
// has shipped both.
type loginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Data         struct {
		AccessToken  string              `json:"accessToken"`
		RefreshToken string              `json:"refreshToken"`
		User         *domain.SessionUser `json:"user"`
	} `json:"data"`
}

// Login exchanges credentials for a token pair and persists the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	const fallback = "login failed"
	in, err := jsonPayload(map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	raw, err := s.client.send(ctx, s.client.plain, http.MethodPost, loginPath, nil, in, fallback)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", fallback, err)
	}

	session := &domain.Session{
		AccessToken:  firstNonEmpty(resp.Data.AccessToken, resp.AccessToken),
		RefreshToken: firstNonEmpty(resp.Data.RefreshToken, resp.RefreshToken),
		User:         resp.Data.User,
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("%s: response carried no access token", fallback)
	}
	if session.User == nil {
		if claims, err := token.Decode(session.AccessToken); err == nil {
			session.User = &domain.SessionUser{
				ID:       claims.Subject,
				FullName: claims.FullName,
				Email:    claims.Email,
			}
		}
	}

	if err := s.client.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Refresh exchanges refreshToken for a new pair. Both tokens must be present
// in the answer.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	const fallback = "failed to refresh session"
	in, err := jsonPayload(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return token.Pair{}, err
	}
	raw, err := s.client.send(ctx, s.client.plain, http.MethodPost, refreshPath, nil, in, fallback)
	if err != nil {
		return token.Pair{}, err
	}
	var pair token.Pair
	if _, err := decodeEnvelope(raw, &pair, fallback); err != nil {
		return token.Pair{}, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return token.Pair{}, fmt.Errorf("%s: response is missing tokens", fallback)
	}
	return pair, nil
}

// Logout forgets the stored session. The backend keeps no server-side
// session to revoke.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.sessions.Clear(ctx)
}

// Current returns the stored session.
func (s *AuthService) Current(ctx context.Context) (*domain.Session, error) {
	return s.client.sessions.Load(ctx)
}

// ForgotPassword asks the backend to mail a one-time code to email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	const fallback = "Failed to send OTP"
	in, err := jsonPayload(map[string]string{"email": strings.TrimSpace(email)})
	if err != nil {
		return "", err
	}
	raw, err := s.client.send(ctx, s.client.plain, http.MethodPost, forgotPasswordPath, nil, in, fallback)
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(raw, nil, fallback)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(env.Message, "OTP sent successfully to your email"), nil
}

// ResetPassword sets a new password using the code from ForgotPassword.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error) {
	const fallback = "Failed to reset password"
	in, err := jsonPayload(map[string]string{
		"email":       strings.TrimSpace(email),
		"otp":         strings.TrimSpace(otp),
		"newPassword": newPassword,
	})
	if err != nil {
		return "", err
	}
	raw, err := s.client.send(ctx, s.client.plain, http.MethodPost, resetPasswordPath, nil, in, fallback)
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(raw, nil, fallback)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(env.Message, "Password reset successfully"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

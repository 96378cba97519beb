package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-admin/internal/forms"
	"marketplace-admin/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type sessionUser struct {
	ID       string `json:"_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := forms.Validate(forms.Login{Email: req.Email, Password: req.Password}); err != nil {
		h.fail(c, err, "")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "Login successful", gin.H{
		"accessToken":  res.Pair.AccessToken,
		"refreshToken": res.Pair.RefreshToken,
		"user": sessionUser{
			ID:       res.Admin.ID,
			FullName: res.Admin.FullName,
			Email:    res.Admin.Email,
		},
	})
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Refresh token is required")
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			abort(c, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.fail(c, err, "")
		return
	}
	respond(c, http.StatusOK, "Token refreshed", pair)
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	code, err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	// no mailer in the sandbox
	h.logger.WithField("email", req.Email).Infof("password reset code %s", code)
	respond(c, http.StatusOK, "OTP sent successfully to your email", nil)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.fail(c, err, "User")
		return
	}
	respond(c, http.StatusOK, "Password reset successfully", nil)
}

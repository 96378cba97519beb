package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"marketplace-admin/internal/forms"
	"marketplace-admin/internal/service"
)

// Handler wires the sandbox admin API routes to the services.
type Handler struct {
	auth      service.AuthService
	catalog   *service.Catalog
	uploadDir string
	logger    *logrus.Logger
}

func NewHandler(auth service.AuthService, catalog *service.Catalog, uploadDir string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		auth:      auth,
		catalog:   catalog,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())
	if h.uploadDir != "" {
		router.Static("/uploads", h.uploadDir)
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			respond(c, http.StatusOK, "ok", nil)
		})

		api.POST("/admin/auth/login", h.login)
		api.POST("/api/auth/refresh", h.refresh)
		api.POST("/auth/forgot-password", h.forgotPassword)
		api.POST("/auth/reset-password", h.resetPassword)

		authed := api.Group("", authMiddleware(h.auth))
		authed.GET("/category", h.listCategories)
		authed.POST("/category", h.createCategory)
		authed.GET("/category/:id", h.getCategory)
		authed.PUT("/category/:id", h.updateCategory)
		authed.DELETE("/category/:id", h.deleteCategory)

		authed.GET("/job", h.listJobs)
		authed.POST("/job", h.createJob)
		authed.GET("/job/:id", h.getJob)

		authed.GET("/location", h.listLocations)
		authed.POST("/location", h.createLocation)
		authed.GET("/location/:id", h.getLocation)
		authed.PUT("/location/:id", h.updateLocation)
		authed.DELETE("/location/:id", h.deleteLocation)

		authed.GET("/api/user", h.listUsers)
		authed.GET("/api/user/me", h.me)
		authed.PATCH("/api/user/me", h.updateMe)
		authed.GET("/api/user/:id", h.getUser)

		authed.GET("/wallet/transactions", h.listTransactions)
	}
}

// envelope is the body of every response.
type envelope struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Success bool         `json:"success"`
	Data    any          `json:"data"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Status:  status,
		Message: message,
		Success: status < http.StatusBadRequest,
		Data:    data,
	})
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Status: status, Message: message})
}

// fail maps a service error onto a status and message. notFound names the
// resource in 404 answers.
func (h *Handler) fail(c *gin.Context, err error, notFound string) {
	var invalid forms.Errors
	switch {
	case errors.As(err, &invalid):
		body := envelope{Status: http.StatusBadRequest, Message: invalid[0].Message}
		for _, fe := range invalid {
			body.Errors = append(body.Errors, fieldError{Field: fe.Field, Message: fe.Message})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrNotFound):
		abort(c, http.StatusNotFound, notFound+" not found")
	case errors.Is(err, service.ErrConflict):
		abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidOTP):
		abort(c, http.StatusBadRequest, "Invalid or expired OTP")
	case errors.Is(err, service.ErrInvalidToken):
		abort(c, http.StatusUnauthorized, "Unauthorized")
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		abort(c, http.StatusInternalServerError, "Internal server error")
	}
}

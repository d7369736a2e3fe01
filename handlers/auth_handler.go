package handlers

import (
	"context"
	"net/http"

	"github.com/upb/user-auth-service/internal/observability"
	"github.com/upb/user-auth-service/middleware"
	"github.com/upb/user-auth-service/utils"
	"go.uber.org/zap"
)

// AuthService defines the session operations used by AuthHandler
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	RefreshToken(ctx context.Context, token string) (string, error)
}

// AuthHandler handles login and token refresh
type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// HandleLogin handles POST /api/auth/login with Basic credentials.
// A missing or malformed header is treated as empty credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	username, password, _ := r.BasicAuth()

	token, err := h.service.Login(ctx, username, password)
	if err != nil {
		logger.Warn("login failed", zap.String("username", username), zap.Error(err))
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, utils.TokenResponse{Token: token}); err != nil {
		logger.Error("failed to write login response", zap.Error(err))
	}
}

// HandleRefresh handles GET /api/auth/refresh. It runs behind RequireAuth,
// which has already verified the token it exchanges.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	token, err := h.service.RefreshToken(ctx, middleware.ExtractToken(r))
	if err != nil {
		logger.Warn("token refresh failed", zap.Error(err))
		HandleServiceError(w, err, logger)
		return
	}

	if err := utils.WriteOK(w, utils.TokenResponse{Token: token}); err != nil {
		logger.Error("failed to write refresh response", zap.Error(err))
	}
}

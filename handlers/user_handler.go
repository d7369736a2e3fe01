package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/user-auth-service/internal/observability"
	"github.com/upb/user-auth-service/middleware"
	"github.com/upb/user-auth-service/models"
	"github.com/upb/user-auth-service/services"
	"github.com/upb/user-auth-service/utils"
	"go.uber.org/zap"
)

// UserService defines the user operations used by UserHandler
type UserService interface {
	Create(ctx context.Context, input models.CreateUserInput) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindMany(ctx context.Context) ([]*models.User, error)
	DeleteByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, input models.UpdateUserInput) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, input models.UpdatePasswordInput) error
}

// maxBodyBytes caps JSON request bodies for user endpoints.
const maxBodyBytes = 64 << 10

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate handles POST /api/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	var input models.CreateUserInput
	if !h.decode(w, r, &input, logger) {
		return
	}

	user, err := h.service.Create(ctx, input)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	logger.Info("user created", zap.String("user_id", user.ID.String()))
	h.writeOK(w, user, logger)
}

// HandleList handles GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	users, err := h.service.FindMany(ctx)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	h.writeOK(w, users, logger)
}

// HandleGet handles GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	user, err := h.service.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	h.writeOK(w, user, logger)
}

// HandleMe handles GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	user := middleware.GetCurrentUserFromContext(ctx)
	if user == nil {
		HandleServiceError(w, services.ErrUnauthorized, logger)
		return
	}

	h.writeOK(w, user.Sanitized(), logger)
}

// HandleDelete handles DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	user, err := h.service.DeleteByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	logger.Info("user deleted", zap.String("user_id", user.ID.String()))
	h.writeOK(w, user, logger)
}

// HandleUpdate handles PATCH /api/users/{id}. Callers may only edit their own profile.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	id := chi.URLParam(r, "id")
	if !h.authorizeSelf(w, r, id, logger) {
		return
	}

	var input models.UpdateUserInput
	if !h.decode(w, r, &input, logger) {
		return
	}

	user, err := h.service.Update(ctx, id, input)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	h.writeOK(w, user, logger)
}

// HandleUpdatePassword handles PUT /api/users/{id}/password
func (h *UserHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.WithRequestID(ctx, h.logger)

	id := chi.URLParam(r, "id")
	if !h.authorizeSelf(w, r, id, logger) {
		return
	}

	var input models.UpdatePasswordInput
	if !h.decode(w, r, &input, logger) {
		return
	}

	if err := h.service.UpdatePassword(ctx, id, input); err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	utils.WriteNoContent(w)
}

// authorizeSelf writes 403 and returns false unless the authenticated user owns id.
func (h *UserHandler) authorizeSelf(w http.ResponseWriter, r *http.Request, id string, logger *zap.Logger) bool {
	current := middleware.GetCurrentUserFromContext(r.Context())
	if current == nil {
		HandleServiceError(w, services.ErrUnauthorized, logger)
		return false
	}
	if current.ID.String() != id {
		logger.Warn("user attempted to modify another account",
			zap.String("user_id", current.ID.String()),
			zap.String("target_id", id))
		HandleServiceError(w, services.ErrForbidden, logger)
		return false
	}
	return true
}

// decode parses the JSON body into v. Unknown fields are dropped.
func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("request body too large", zap.Int64("limit", tooLarge.Limit))
			_ = utils.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
			return false
		}
		logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func (h *UserHandler) writeOK(w http.ResponseWriter, data interface{}, logger *zap.Logger) {
	if err := utils.WriteOK(w, data); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/upb/user-auth-service/internal/auth"
	"github.com/upb/user-auth-service/internal/observability"
	"github.com/upb/user-auth-service/models"
	"github.com/upb/user-auth-service/services"
	"github.com/upb/user-auth-service/utils"
	"go.uber.org/zap"
)

// TokenReader verifies session tokens
type TokenReader interface {
	ReadToken(token string) (*auth.Claims, error)
}

// UserFinder loads users by id
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	tokens TokenReader
	users  UserFinder
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenReader, users UserFinder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// RequireAuth only lets requests through that carry a valid session token
// whose user still exists. The user and claims are added to the context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := observability.WithRequestID(ctx, m.logger)

		// A missing token is still handed to the reader so that every
		// rejection goes through the same path.
		claims, err := m.tokens.ReadToken(ExtractToken(r))
		if err != nil {
			logger.Warn("token rejected", zap.Error(err))
			writeAuthError(w, err)
			return
		}

		user, err := m.users.FindByID(ctx, claims.ID)
		if err != nil {
			if services.IsNotFoundError(err) {
				logger.Warn("token subject no longer exists", zap.String("user_id", claims.ID))
				writeAuthError(w, services.ErrUnknownSubject)
				return
			}
			logger.Error("failed to load token subject", zap.String("user_id", claims.ID), zap.Error(err))
			writeAuthError(w, err)
			return
		}

		ctx = WithClaims(ctx, claims)
		ctx = WithCurrentUser(ctx, user)

		logger.Debug("authentication successful", zap.String("user_id", claims.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken returns the second space-separated part of the Authorization
// header ("Bearer TOKEN"), or "" when there is none.
func ExtractToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// writeAuthError answers 401 with the error's client message, or a generic
// 500 for anything that is not an authorization failure.
func writeAuthError(w http.ResponseWriter, err error) {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) && domainErr.Type == services.ErrorTypeUnauthorized {
		_ = utils.WriteUnauthorized(w, domainErr.Message)
		return
	}
	_ = utils.WriteInternalServerError(w, services.ErrInternal.Message)
}

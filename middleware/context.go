package middleware

import (
	"context"

	"github.com/upb/user-auth-service/internal/auth"
	"github.com/upb/user-auth-service/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"

	// CurrentUserKey is the context key for the authenticated user
	CurrentUserKey contextKey = "current_user"
)

// GetClaimsFromContext retrieves token claims from context
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// WithClaims adds token claims to the context
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetCurrentUserFromContext retrieves the authenticated user from context
func GetCurrentUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(CurrentUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// WithCurrentUser adds the authenticated user to the context
func WithCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, CurrentUserKey, user)
}

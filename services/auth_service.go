package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/upb/user-auth-service/internal/auth"
	"github.com/upb/user-auth-service/internal/observability"
	"github.com/upb/user-auth-service/models"
	"github.com/upb/user-auth-service/repositories"
	"go.uber.org/zap"
)

// Auth operations recorded in metrics
const (
	opLogin   = "login"
	opRefresh = "refresh"
	opRead    = "read_token"
)

// AuthService logs users in and issues, verifies and refreshes session tokens.
type AuthService struct {
	users   repositories.UserRepository
	hasher  *auth.Hasher
	tokens  *auth.TokenCodec
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService. metrics may be nil.
func NewAuthService(
	users repositories.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenCodec,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Login checks username and password and returns a fresh session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		s.metrics.RecordAuth(opLogin, observability.OutcomeUnauthorized)
		return "", ErrUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.metrics.RecordAuth(opLogin, observability.OutcomeNotFound)
			return "", ErrUnknownUser
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		s.metrics.RecordAuth(opLogin, observability.OutcomeError)
		return "", WrapInternal(err)
	}

	ok, err := s.VerifyPassword(ctx, user, password)
	if err != nil {
		s.metrics.RecordAuth(opLogin, observability.OutcomeError)
		return "", err
	}
	if !ok {
		s.logger.Warn("login rejected", zap.String("user_id", user.ID.String()))
		s.metrics.RecordAuth(opLogin, observability.OutcomeUnauthorized)
		return "", ErrInvalidCredentials
	}

	token, err := s.CreateToken(auth.Identity{ID: user.ID.String(), Username: user.Username})
	if err != nil {
		s.metrics.RecordAuth(opLogin, observability.OutcomeError)
		return "", err
	}

	s.logger.Debug("user logged in", zap.String("user_id", user.ID.String()))
	s.metrics.RecordAuth(opLogin, observability.OutcomeSuccess)
	return token, nil
}

// CreateToken issues a token for identity.
func (s *AuthService) CreateToken(identity auth.Identity) (string, error) {
	token, err := s.tokens.Create(identity)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidClaims) {
			return "", ErrInvalidUserData.WithCause(err)
		}
		s.logger.Error("token signing failed", zap.Error(err))
		return "", WrapInternal(err)
	}
	return token, nil
}

// ReadToken verifies token and returns its claims. Expired and otherwise
// invalid tokens are both Unauthorized, with different messages.
func (s *AuthService) ReadToken(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Read(token)
	if err != nil {
		s.metrics.RecordAuth(opRead, observability.OutcomeUnauthorized)
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken.WithCause(err)
	}
	return claims, nil
}

// RefreshToken exchanges a valid token for a new one with the same identity
// and a new expiry. The old token stays valid until it expires on its own.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.ReadToken(token)
	if err != nil {
		s.metrics.RecordAuth(opRefresh, observability.OutcomeUnauthorized)
		return "", err
	}

	// exp is checked again against the service clock.
	if !claims.Expiry().After(s.now()) {
		s.metrics.RecordAuth(opRefresh, observability.OutcomeUnauthorized)
		return "", ErrTokenExpired
	}

	user, err := s.lookupSubject(ctx, claims)
	if err != nil {
		if IsUnauthorizedError(err) {
			s.metrics.RecordAuth(opRefresh, observability.OutcomeUnauthorized)
		} else {
			s.metrics.RecordAuth(opRefresh, observability.OutcomeError)
		}
		return "", err
	}

	fresh, err := s.CreateToken(auth.Identity{ID: user.ID.String(), Username: user.Username})
	if err != nil {
		s.metrics.RecordAuth(opRefresh, observability.OutcomeError)
		return "", err
	}

	s.metrics.RecordAuth(opRefresh, observability.OutcomeSuccess)
	return fresh, nil
}

// lookupSubject loads the user a token was issued to. A subject that no
// longer exists is Unauthorized; store failures are Internal.
func (s *AuthService) lookupSubject(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrUnknownSubject
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		s.logger.Error("token subject lookup failed", zap.String("user_id", claims.ID), zap.Error(err))
		return nil, WrapInternal(err)
	}
	return user.Sanitized(), nil
}

// HashPassword hashes password with a fresh salt.
func (s *AuthService) HashPassword(ctx context.Context, password string) (auth.StoredSecret, error) {
	secret, err := s.hasher.Hash(ctx, password, "")
	if err != nil {
		return auth.StoredSecret{}, WrapInternal(err)
	}
	return secret, nil
}

// VerifyPassword reports whether password matches the stored secret of user.
func (s *AuthService) VerifyPassword(ctx context.Context, user *models.User, password string) (bool, error) {
	ok, err := s.hasher.Verify(ctx, password, user.Salt, user.Hash)
	if err != nil {
		return false, WrapInternal(err)
	}
	return ok, nil
}

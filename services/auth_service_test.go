package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/user-auth-service/internal/auth"
	"github.com/upb/user-auth-service/internal/observability"
	"github.com/upb/user-auth-service/models"
	"github.com/upb/user-auth-service/repositories"
	"go.uber.org/zap"
)

const (
	testPassword = "@T3st1ng"
	testSecret   = "services-test-secret-0123456789ab"
)

// testClock is a settable clock shared by the codec and the service.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestAuthService(t *testing.T, repo repositories.UserRepository) (*AuthService, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Now().Truncate(time.Second)}
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: testSecret}, auth.WithClock(clock.Now))
	require.NoError(t, err)

	svc := NewAuthService(repo, auth.NewHasher(2, nil), codec, observability.NewMetrics(), zap.NewNop())
	svc.now = clock.Now
	return svc, clock
}

func storedUser(username string) *models.User {
	secret := auth.HashSecret(testPassword, "")
	return models.NewUser(models.CreateUserInput{Username: username}, secret.Hash, secret.Salt)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := storedUser("test")

	t.Run("success returns a token for the user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", ctx, "test").Return(user, nil)
		svc, _ := newTestAuthService(t, repo)

		token, err := svc.Login(ctx, "test", testPassword)
		require.NoError(t, err)

		claims, err := svc.ReadToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.ID)
		assert.Equal(t, "test", claims.Username)
		repo.AssertExpectations(t)
	})

	t.Run("empty arguments are unauthorized without a lookup", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(t, repo)

		for _, creds := range [][2]string{{"", testPassword}, {"test", ""}, {"", ""}} {
			_, err := svc.Login(ctx, creds[0], creds[1])
			assert.ErrorIs(t, err, ErrUnauthorized)
		}
		repo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", ctx, "ghost").Return(nil, fmt.Errorf("lookup: %w", repositories.ErrNotFound))
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Login(ctx, "ghost", testPassword)
		assert.ErrorIs(t, err, ErrUnknownUser)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", ctx, "test").Return(nil, errors.New("connection reset"))
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Login(ctx, "test", testPassword)
		var domainErr *DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrorTypeInternal, domainErr.Type)
		assert.Equal(t, "Internal error", domainErr.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByUsername", ctx, "test").Return(user, nil)
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Login(ctx, "test", "@T3st1nG")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.True(t, IsUnauthorizedError(err))
	})
}

func TestAuthService_CreateToken(t *testing.T) {
	svc, _ := newTestAuthService(t, new(MockUserRepository))

	token, err := svc.CreateToken(auth.Identity{ID: "id", Username: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.CreateToken(auth.Identity{Username: "test"})
	assert.ErrorIs(t, err, ErrInvalidUserData)
	assert.True(t, IsBadRequestError(err))
}

func TestAuthService_ReadToken(t *testing.T) {
	svc, clock := newTestAuthService(t, new(MockUserRepository))

	token, err := svc.CreateToken(auth.Identity{ID: "id", Username: "test"})
	require.NoError(t, err)

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.ReadToken(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.NotErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ReadToken("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		clock.now = clock.now.Add(auth.DefaultTokenTTL + time.Second)
		_, err := svc.ReadToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.True(t, IsUnauthorizedError(err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	user := storedUser("test")

	t.Run("same identity with a later expiry", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, user.ID).Return(user, nil)
		svc, clock := newTestAuthService(t, repo)

		original, err := svc.CreateToken(auth.Identity{ID: user.ID.String(), Username: "test"})
		require.NoError(t, err)
		before, err := svc.ReadToken(original)
		require.NoError(t, err)

		clock.now = clock.now.Add(time.Hour)
		fresh, err := svc.RefreshToken(ctx, original)
		require.NoError(t, err)
		assert.NotEqual(t, original, fresh)

		after, err := svc.ReadToken(fresh)
		require.NoError(t, err)
		assert.Equal(t, before.Identity(), after.Identity())
		assert.True(t, after.Expiry().After(before.Expiry()))

		// the old token stays usable until its own expiry
		_, err = svc.ReadToken(original)
		assert.NoError(t, err)
	})

	t.Run("deleted user is unauthorized", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, user.ID).Return(nil, repositories.ErrNotFound)
		svc, _ := newTestAuthService(t, repo)

		token, err := svc.CreateToken(auth.Identity{ID: user.ID.String(), Username: "test"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnknownSubject)
		assert.True(t, IsUnauthorizedError(err))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, user.ID).Return(nil, errors.New("timeout"))
		svc, _ := newTestAuthService(t, repo)

		token, err := svc.CreateToken(auth.Identity{ID: user.ID.String(), Username: "test"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, token)
		assert.True(t, IsInternalError(err))
	})

	t.Run("non uuid subject is unauthorized", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(t, repo)

		token, err := svc.CreateToken(auth.Identity{ID: "not-a-uuid", Username: "test"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnknownSubject)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("tampered token", func(t *testing.T) {
		svc, _ := newTestAuthService(t, new(MockUserRepository))
		token, err := svc.CreateToken(auth.Identity{ID: uuid.NewString(), Username: "test"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, token[:len(token)-2])
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, clock := newTestAuthService(t, new(MockUserRepository))
		token, err := svc.CreateToken(auth.Identity{ID: user.ID.String(), Username: "test"})
		require.NoError(t, err)

		clock.now = clock.now.Add(48 * time.Hour)
		_, err = svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expiry is rechecked against the service clock", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, clock := newTestAuthService(t, repo)
		token, err := svc.CreateToken(auth.Identity{ID: user.ID.String(), Username: "test"})
		require.NoError(t, err)

		// codec still sees the token as valid
		serviceNow := clock.now.Add(auth.DefaultTokenTTL)
		svc.now = func() time.Time { return serviceNow }

		_, err = svc.ReadToken(token)
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_HashAndVerifyPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t, new(MockUserRepository))

	secret, err := svc.HashPassword(ctx, testPassword)
	require.NoError(t, err)
	user := &models.User{Hash: secret.Hash, Salt: secret.Salt}

	ok, err := svc.VerifyPassword(ctx, user, testPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, user, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

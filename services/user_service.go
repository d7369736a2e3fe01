package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/user-auth-service/internal/auth"
	"github.com/upb/user-auth-service/models"
	"github.com/upb/user-auth-service/repositories"
	"github.com/upb/user-auth-service/utils"
	"go.uber.org/zap"
)

// PasswordManager hashes and verifies user passwords. Implemented by AuthService.
type PasswordManager interface {
	HashPassword(ctx context.Context, password string) (auth.StoredSecret, error)
	VerifyPassword(ctx context.Context, user *models.User, password string) (bool, error)
}

// UserService manages user records. Users it returns never carry hash or salt.
type UserService struct {
	users     repositories.UserRepository
	txMgr     repositories.TransactionManager
	passwords PasswordManager
	logger    *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users repositories.UserRepository,
	txMgr repositories.TransactionManager,
	passwords PasswordManager,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		txMgr:     txMgr,
		passwords: passwords,
		logger:    logger,
	}
}

// Create validates input, hashes the password and stores a new user.
func (s *UserService) Create(ctx context.Context, input models.CreateUserInput) (*models.User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, invalidInput(err)
	}

	secret, err := s.passwords.HashPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(input, secret.Hash, secret.Salt)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUserNotUnique
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, WrapInternal(err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	return user.Sanitized(), nil
}

// FindByID returns the user with the given id. Malformed ids are NotFound.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, s.storeError("failed to find user", err)
	}
	return user.Sanitized(), nil
}

// FindMany returns every user.
func (s *UserService) FindMany(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, WrapInternal(err)
	}

	result := make([]*models.User, 0, len(users))
	for _, u := range users {
		result = append(result, u.Sanitized())
	}
	return result, nil
}

// DeleteByID removes a user and returns the removed record.
func (s *UserService) DeleteByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	user, err := s.users.Delete(ctx, uid)
	if err != nil {
		return nil, s.storeError("failed to delete user", err)
	}

	s.logger.Info("user deleted", zap.String("user_id", uid.String()))
	return user.Sanitized(), nil
}

// Update changes the profile fields present in input.
func (s *UserService) Update(ctx context.Context, id string, input models.UpdateUserInput) (*models.User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, invalidInput(err)
	}
	if input.Email != nil {
		if email := strings.TrimSpace(*input.Email); email != "" {
			if err := utils.ValidateField("email", email, "email"); err != nil {
				return nil, invalidInput(err)
			}
		}
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.User, error) {
		user, err := s.users.GetByID(ctx, uid)
		if err != nil {
			return nil, s.storeError("failed to load user for update", err)
		}
		if input.IsEmpty() {
			return user.Sanitized(), nil
		}

		user.Apply(input)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, s.storeError("failed to update user", err)
		}
		return user.Sanitized(), nil
	})
}

// UpdatePassword replaces a user's password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, id string, input models.UpdatePasswordInput) error {
	if err := utils.ValidateStruct(input); err != nil {
		return invalidInput(err)
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	return WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		user, err := s.users.GetByID(ctx, uid)
		if err != nil {
			return s.storeError("failed to load user for password change", err)
		}

		ok, err := s.passwords.VerifyPassword(ctx, user, input.OldPassword)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("password change rejected", zap.String("user_id", uid.String()))
			return ErrWrongPassword
		}

		secret, err := s.passwords.HashPassword(ctx, input.NewPassword)
		if err != nil {
			return err
		}
		if err := s.users.UpdatePassword(ctx, uid, secret.Hash, secret.Salt); err != nil {
			return s.storeError("failed to update password", err)
		}

		s.logger.Info("user password changed", zap.String("user_id", uid.String()))
		return nil
	})
}

// storeError maps repository errors: absence is NotFound, the rest is Internal.
func (s *UserService) storeError(msg string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	s.logger.Error(msg, zap.Error(err))
	return WrapInternal(err)
}

// invalidInput turns a validation failure into a BadRequest carrying field details.
func invalidInput(err error) error {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		e := ErrInvalidUserData.WithCause(err)
		e.Details = ve.Details()
		return e
	}
	return ErrInvalidUserData.WithCause(err)
}

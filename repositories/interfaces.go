package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/user-auth-service/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the username
	// is already taken, compared case-insensitively.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID, including hash and salt
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by exact username, including hash and salt
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// List retrieves all users without hash and salt, oldest first
	List(ctx context.Context) ([]*models.User, error)

	// Update writes the profile fields of user
	Update(ctx context.Context, user *models.User) error

	// UpdatePassword replaces the stored hash and salt of a user
	UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt string) error

	// Delete removes a user and returns the removed row
	Delete(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users        UserRepository
	Transactions TransactionManager
	Health       HealthChecker
}

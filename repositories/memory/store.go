// Package memory is an in-process user store for development and tests.
// Data lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/upb/user-auth-service/models"
	"github.com/upb/user-auth-service/repositories"
)

// UserStore is an in-memory repositories.UserRepository. Usernames are
// unique case-insensitively, like the unique index of the SQL schema.
type UserStore struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*models.User
	byUsername map[string]uuid.UUID
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[uuid.UUID]*models.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

// Create inserts a copy of user.
func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, taken := s.byUsername[key]; taken {
		return fmt.Errorf("username %q: %w", user.Username, repositories.ErrDuplicate)
	}
	if _, taken := s.users[user.ID]; taken {
		return fmt.Errorf("user %s: %w", user.ID, repositories.ErrDuplicate)
	}

	c := *user
	s.users[user.ID] = &c
	s.byUsername[key] = user.ID
	return nil
}

// GetByID returns a copy of the user with the given id.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	c := *u
	return &c, nil
}

// GetByUsername returns a copy of the user with exactly this username.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.byUsername[strings.ToLower(username)]; ok {
		if u := s.users[id]; u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("username %q: %w", username, repositories.ErrNotFound)
}

// List returns all users without secrets, oldest first.
func (s *UserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Sanitized())
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	return users, nil
}

// Update writes the profile fields of user.
func (s *UserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, repositories.ErrNotFound)
	}
	u.Email = user.Email
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	u.UpdatedAt = user.UpdatedAt
	return nil
}

// UpdatePassword replaces the stored hash and salt.
func (s *UserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash, salt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	u.Hash = hash
	u.Salt = salt
	return nil
}

// Delete removes the user and returns it without secrets.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	delete(s.users, id)
	delete(s.byUsername, strings.ToLower(u.Username))
	return u.Sanitized(), nil
}

// HealthCheck always succeeds.
func (s *UserStore) HealthCheck(context.Context) error {
	return nil
}

// TransactionManager hands out transactions that only carry a context.
// Individual store operations are atomic; there is no rollback.
type TransactionManager struct{}

// NewTransactionManager creates a TransactionManager.
func NewTransactionManager() repositories.TransactionManager {
	return TransactionManager{}
}

// Begin starts a transaction.
func (TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return transaction{ctx: ctx}, nil
}

// InTransaction runs fn.
func (m TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, _ := m.Begin(ctx)
	return fn(ctx, tx)
}

type transaction struct {
	ctx context.Context
}

func (transaction) Commit() error              { return nil }
func (transaction) Rollback() error            { return nil }
func (t transaction) Context() context.Context { return t.ctx }

// NewRepositories wires a fresh in-memory store.
func NewRepositories() *repositories.Repositories {
	store := NewUserStore()
	return &repositories.Repositories{
		Users:        store,
		Transactions: NewTransactionManager(),
		Health:       store,
	}
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Hash and Salt are never serialized.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     *string   `json:"email" db:"email"`
	FirstName *string   `json:"firstName" db:"first_name"`
	LastName  *string   `json:"lastName" db:"last_name"`
	Hash      string    `json:"-" db:"hash"`
	Salt      string    `json:"-" db:"salt"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser creates a new User instance from validated input and its stored secret
func NewUser(input CreateUserInput, hash, salt string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     optional(input.Email),
		FirstName: optional(input.FirstName),
		LastName:  optional(input.LastName),
		Hash:      hash,
		Salt:      salt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Sanitized returns a copy of the user with hash and salt cleared.
// Returned users always go through here before leaving the service layer.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Hash = ""
	c.Salt = ""
	return &c
}

// Apply copies the profile fields present in input onto the user.
// An explicitly empty string clears the field.
func (u *User) Apply(input UpdateUserInput) {
	if input.Email != nil {
		u.Email = optional(*input.Email)
	}
	if input.FirstName != nil {
		u.FirstName = optional(*input.FirstName)
	}
	if input.LastName != nil {
		u.LastName = optional(*input.LastName)
	}
	u.UpdatedAt = time.Now().UTC()
}

// CreateUserInput is the body of POST /api/users. Unknown fields are dropped by decoding.
type CreateUserInput struct {
	Username  string `json:"username" validate:"required,username,max=255"`
	Password  string `json:"password" validate:"required,password"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	FirstName string `json:"firstName" validate:"omitempty,max=255"`
	LastName  string `json:"lastName" validate:"omitempty,max=255"`
}

// UpdateUserInput is the body of PATCH /api/users/{id}. Nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string `json:"email" validate:"omitempty,max=255"`
	FirstName *string `json:"firstName" validate:"omitempty,max=255"`
	LastName  *string `json:"lastName" validate:"omitempty,max=255"`
}

// IsEmpty reports whether the update carries no field at all
func (in UpdateUserInput) IsEmpty() bool {
	return in.Email == nil && in.FirstName == nil && in.LastName == nil
}

// UpdatePasswordInput is the body of PUT /api/users/{id}/password
type UpdatePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

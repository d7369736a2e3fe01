package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewUser(t *testing.T) {
	input := CreateUserInput{
		Username:  "test",
		Password:  "@T3st1ng",
		Email:     " test@example.com ",
		FirstName: "Test",
	}

	user := NewUser(input, "hash", "salt")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test", user.Username)
	require.NotNil(t, user.Email)
	assert.Equal(t, "test@example.com", *user.Email)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Test", *user.FirstName)
	assert.Nil(t, user.LastName)
	assert.Equal(t, "hash", user.Hash)
	assert.Equal(t, "salt", user.Salt)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_JSONOmitsSecrets(t *testing.T) {
	user := NewUser(CreateUserInput{Username: "test"}, "secret-hash", "secret-salt")

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "test", m["username"])
	assert.Equal(t, user.ID.String(), m["id"])
	assert.NotContains(t, m, "hash")
	assert.NotContains(t, m, "salt")
	assert.NotContains(t, m, "Hash")
	assert.NotContains(t, string(data), "secret-hash")
	assert.NotContains(t, string(data), "secret-salt")
}

func TestUser_Sanitized(t *testing.T) {
	user := NewUser(CreateUserInput{Username: "test"}, "hash", "salt")

	clean := user.Sanitized()

	assert.Empty(t, clean.Hash)
	assert.Empty(t, clean.Salt)
	assert.Equal(t, user.ID, clean.ID)
	// the original is left untouched
	assert.Equal(t, "hash", user.Hash)

	var nilUser *User
	assert.Nil(t, nilUser.Sanitized())
}

func TestUser_Apply(t *testing.T) {
	user := NewUser(CreateUserInput{Username: "test", Email: "old@example.com", LastName: "Old"}, "h", "s")
	before := user.UpdatedAt

	user.Apply(UpdateUserInput{Email: strPtr("new@example.com"), LastName: strPtr("")})

	require.NotNil(t, user.Email)
	assert.Equal(t, "new@example.com", *user.Email)
	assert.Nil(t, user.LastName)
	assert.Nil(t, user.FirstName)
	assert.False(t, user.UpdatedAt.Before(before))
}

func TestUpdateUserInput_IsEmpty(t *testing.T) {
	assert.True(t, UpdateUserInput{}.IsEmpty())
	assert.False(t, UpdateUserInput{FirstName: strPtr("x")}.IsEmpty())
}

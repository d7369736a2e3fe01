package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/user-auth-service/services"
	"github.com/upb/user-auth-service/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "bad request",
			err:             services.ErrInvalidUserData,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid user data",
		},
		{
			name:            "invalid credentials",
			err:             services.ErrInvalidCredentials,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid username and password combination",
		},
		{
			name:            "expired token",
			err:             services.ErrTokenExpired,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Token expired",
		},
		{
			name:            "forbidden",
			err:             services.ErrForbidden,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Forbidden",
		},
		{
			name:            "unknown user",
			err:             services.ErrUnknownUser,
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Unknown user",
		},
		{
			name:            "duplicate user",
			err:             services.ErrUserNotUnique,
			expectedStatus:  http.StatusConflict,
			expectedMessage: "User must be unique",
		},
		{
			name:            "internal error hides cause",
			err:             services.WrapInternal(errors.New("pq: relation users does not exist")),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal error",
		},
		{
			name:            "plain error",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedMessage, response.Message)
			assert.Nil(t, response.Details)
		})
	}
}

func TestHandleServiceError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	err := services.ErrInvalidUserData.WithDetail("password", "password is required")

	HandleServiceError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "password is required", response.Details["password"])
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())
	assert.Equal(t, 0, w.Body.Len())
}

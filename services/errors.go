package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// HTTPStatus returns the response status for the error type
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrorTypeBadRequest:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DomainError represents a structured error with additional context.
// Message is safe to show to clients; Err is for logs only.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Errors match on Type, and on Message as well when
// the target carries one, so ErrTokenExpired and ErrInvalidToken stay distinct.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Message == "" || e.Message == t.Message
}

// WithDetail returns a copy of the error carrying an extra detail.
// The receiver, often a shared sentinel, is left untouched.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := *e
	c.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		c.Details[k] = v
	}
	c.Details[key] = value
	return &c
}

// WithCause returns a copy of the error wrapping err
func (e *DomainError) WithCause(err error) *DomainError {
	c := *e
	c.Err = err
	return &c
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables. Treat them as read-only; use WithDetail/WithCause.
var (
	// Bad Request Errors
	ErrBadRequest      = NewDomainError(ErrorTypeBadRequest, "Bad request", nil)
	ErrInvalidUserData = NewDomainError(ErrorTypeBadRequest, "Invalid user data", nil)

	// Authorization Errors
	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "Unauthorized", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "Invalid username and password combination", nil)
	ErrInvalidToken       = NewDomainError(ErrorTypeUnauthorized, "Invalid token", nil)
	ErrTokenExpired       = NewDomainError(ErrorTypeUnauthorized, "Token expired", nil)
	ErrUnknownSubject     = NewDomainError(ErrorTypeUnauthorized, "Unknown user", nil)
	ErrWrongPassword      = NewDomainError(ErrorTypeUnauthorized, "Invalid password", nil)

	// Permission Errors
	ErrForbidden = NewDomainError(ErrorTypeForbidden, "Forbidden", nil)

	// Not Found Errors
	ErrNotFound    = NewDomainError(ErrorTypeNotFound, "Not found", nil)
	ErrUnknownUser = NewDomainError(ErrorTypeNotFound, "Unknown user", nil)

	// Conflict Errors
	ErrUserNotUnique = NewDomainError(ErrorTypeConflict, "User must be unique", nil)

	// Internal Errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "Internal error", nil)
)

// Error type checking helper functions

// IsBadRequestError checks if an error is a bad request error
func IsBadRequestError(err error) bool {
	return GetErrorType(err) == ErrorTypeBadRequest
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error with the generic client message
func WrapInternal(err error) error {
	return ErrInternal.WithCause(err)
}

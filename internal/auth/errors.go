package auth

import "errors"

var (
	// ErrInvalidClaims is returned by TokenCodec.Create when the identity is incomplete.
	ErrInvalidClaims = errors.New("invalid token claims")

	// ErrTokenExpired is returned by TokenCodec.Read when exp has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers every other verification, decoding or shape failure.
	ErrTokenInvalid = errors.New("invalid token")
)

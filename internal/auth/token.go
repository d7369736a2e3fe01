package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/user-auth-service/utils"
)

// DefaultTokenTTL is the session token lifetime (1 day).
const DefaultTokenTTL = 24 * time.Hour

// Identity is what a session token asserts about its holder.
type Identity struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// Claims is the decoded payload of a session token: {id, username, exp}.
type Claims struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	jwt.RegisteredClaims
}

// Identity returns the identity part of the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.ID, Username: c.Username}
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenConfig configures a TokenCodec.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenCodec signs and verifies HS256 session tokens with a process-wide secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenCodecOption customizes a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a TokenCodec. A non-positive TTL falls back to DefaultTokenTTL.
func NewTokenCodec(cfg TokenConfig, opts ...TokenCodecOption) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	c := &TokenCodec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Create signs a new token for identity expiring TTL from now.
func (c *TokenCodec) Create(identity Identity) (string, error) {
	if err := utils.ValidateStruct(identity); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:       identity.ID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.now().Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Read verifies tokenString and returns its claims. Expiry failures yield
// ErrTokenExpired; everything else yields ErrTokenInvalid. A correctly signed
// payload that does not carry {id, username, exp} is still rejected.
func (c *TokenCodec) Read(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if err := utils.ValidateStruct(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if err := wholeSecondExpiry(token.Raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return claims, nil
}

// wholeSecondExpiry checks the raw payload, since NumericDate truncates
// fractional seconds while decoding.
func wholeSecondExpiry(raw string) error {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return errors.New("malformed token")
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	var body struct {
		Exp json.Number `json:"exp"`
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	exp, err := body.Exp.Float64()
	if err != nil || exp != math.Trunc(exp) {
		return fmt.Errorf("exp %q is not a whole number of seconds", body.Exp)
	}
	return nil
}

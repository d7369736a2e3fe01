package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

// PBKDF2 parameters. Changing any of them invalidates every stored hash.
const (
	SaltSize       = 16 // random salt bytes, hex-encoded to 32 chars
	HashIterations = 10000
	HashKeyLength  = 512 // derived key bytes, hex-encoded to 1024 chars
)

// StoredSecret is the persisted form of a password.
type StoredSecret struct {
	Hash string
	Salt string
}

// HashSecret derives the hash of secret with salt. An empty salt is replaced
// by a fresh random one. The same (secret, salt) always yields the same hash.
func HashSecret(secret, salt string) StoredSecret {
	if salt == "" {
		salt = NewSalt()
	}
	key := pbkdf2.Key([]byte(secret), []byte(salt), HashIterations, HashKeyLength, sha512.New)
	return StoredSecret{
		Hash: hex.EncodeToString(key),
		Salt: salt,
	}
}

// NewSalt returns SaltSize random bytes, hex-encoded.
func NewSalt() string {
	b := make([]byte, SaltSize)
	// crypto/rand.Read never returns an error and always fills b.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsMatch reports whether secret hashed with salt equals expectedHash.
// The comparison runs in constant time for equal-length inputs.
func IsMatch(secret, salt, expectedHash string) bool {
	computed := HashSecret(secret, salt).Hash
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expectedHash)) == 1
}

// Hasher runs HashSecret and IsMatch with a bound on how many derivations
// execute at once. Callers queue on the request context.
type Hasher struct {
	sem     *semaphore.Weighted
	observe func(time.Duration)
}

// NewHasher creates a Hasher allowing concurrency simultaneous derivations.
// observe, when non-nil, receives the wall time of each call including queueing.
func NewHasher(concurrency int, observe func(time.Duration)) *Hasher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Hasher{
		sem:     semaphore.NewWeighted(int64(concurrency)),
		observe: observe,
	}
}

// Hash is HashSecret behind the concurrency bound. It only fails when ctx is
// done before a slot frees up.
func (h *Hasher) Hash(ctx context.Context, secret, salt string) (StoredSecret, error) {
	start := time.Now()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return StoredSecret{}, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.release(start)
	return HashSecret(secret, salt), nil
}

// Verify is IsMatch behind the concurrency bound.
func (h *Hasher) Verify(ctx context.Context, secret, salt, expectedHash string) (bool, error) {
	start := time.Now()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.release(start)
	return IsMatch(secret, salt, expectedHash), nil
}

func (h *Hasher) release(start time.Time) {
	h.sem.Release(1)
	if h.observe != nil {
		h.observe(time.Since(start))
	}
}

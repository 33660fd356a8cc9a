package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasher hashes and verifies passwords with bcrypt. Every hash or
// verify call holds one slot of a weighted semaphore, so at most `workers`
// of these CPU-heavy operations run at once regardless of request fan-in.
type PasswordHasher struct {
	cost  int
	pool  *semaphore.Weighted
	dummy []byte
}

// NewPasswordHasher returns a hasher using the given bcrypt cost and pool
// size. It pays for one hash up front to build the dummy that VerifyNothing
// compares against.
func NewPasswordHasher(cost, workers int) *PasswordHasher {
	if workers < 1 {
		workers = 1
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("tunekeeper-dummy-password"), cost)
	return &PasswordHasher{
		cost:  cost,
		pool:  semaphore.NewWeighted(int64(workers)),
		dummy: dummy,
	}
}

// Hash returns a bcrypt string that embeds algorithm version, cost and salt.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	if err := h.pool.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("password pool: %w", err)
	}
	defer h.pool.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A mismatch, a malformed hash
// and an unsupported scheme all yield (false, nil); the error is reserved for
// failing to get a pool slot.
func (h *PasswordHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("password pool: %w", err)
	}
	defer h.pool.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// VerifyNothing spends the same work as a real Verify against a throwaway
// hash. Login calls it for unknown emails so response time does not reveal
// whether an account exists.
func (h *PasswordHasher) VerifyNothing(ctx context.Context, password string) error {
	_, err := h.Verify(ctx, password, string(h.dummy))
	return err
}

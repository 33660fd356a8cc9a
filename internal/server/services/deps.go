// Package services holds the use cases: the authentication gateway
// (register, login, refresh), the identity resolver consulted on every
// protected call and the per-owner song library. Storage work runs in short
// transactions; password hashing never runs while one is open.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
)

// Hasher hashes and verifies passwords. Implementations are expected to be
// slow on purpose and to bound their own concurrency.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
	VerifyNothing(ctx context.Context, password string) error
}

// TokenVerifier decodes signed tokens and shares its clock with callers.
type TokenVerifier interface {
	Decode(raw string) (models.Claims, error)
	Now() time.Time
}

// PairIssuer mints a fresh session/refresh pair for an account.
type PairIssuer interface {
	IssuePair(accountID string) (models.TokenPair, error)
}

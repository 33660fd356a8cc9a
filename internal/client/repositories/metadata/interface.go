package metadata

import (
	"context"
)

// Session is what the client keeps between runs: who was logged in and the
// refresh token that resumes them. The session token is never persisted.
type Session struct {
	Email        string
	RefreshToken string
}

// Repository is the client's local key/value store with typed accessors for
// the session keys. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// LoadSession reports false when no refresh token is stored.
	LoadSession(ctx context.Context) (Session, bool, error)
	// SaveSession writes both keys. Run it inside a transaction to keep
	// them consistent.
	SaveSession(ctx context.Context, s Session) error
	Email(ctx context.Context) (string, error)
}

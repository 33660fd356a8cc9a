// Package common defines shared constants and sentinel errors used across
// client and server layers of TuneKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Library errors.
	ErrSongNotFound = errors.New("song not found")

	// Identity failure kinds. Each one is a distinct outcome the boundary
	// layer translates into a transport status.
	ErrAccountConflict  = errors.New("account already exists")
	ErrAuthFailure      = errors.New("invalid email or password")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrAccountDisabled  = errors.New("account disabled")
)

// IsIdentityFailure reports whether err carries one of the identity failure
// kinds (as opposed to a storage or internal error).
func IsIdentityFailure(err error) bool {
	switch {
	case errors.Is(err, ErrAccountConflict),
		errors.Is(err, ErrAuthFailure),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrIdentityNotFound),
		errors.Is(err, ErrAccountDisabled):
		return true
	}
	return false
}

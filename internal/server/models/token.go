package models

import "time"

// Purpose fixes what a signed token may be used for.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeRefresh Purpose = "refresh"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	return p == PurposeSession || p == PurposeRefresh
}

// Claims are the only facts a token carries.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	Purpose   Purpose
}

// TokenPair bundles a short-lived session token and a long-lived refresh
// token. The two are signed independently and share only their subject.
type TokenPair struct {
	SessionToken      string
	RefreshToken      string
	SessionTTLSeconds int64
}

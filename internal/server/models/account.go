package models

import "time"

// Account is a registered identity. PasswordHash is a self-describing bcrypt
// string; the plaintext password is never stored.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

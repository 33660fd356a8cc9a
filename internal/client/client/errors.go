package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountDisabled = errors.New("account disabled")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrNotFound        = errors.New("not found")
)

package auth

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrEmailTaken      = errors.New("email already registered")
)

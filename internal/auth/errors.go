package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the API rejects the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoToken is returned by operations that need a stored bearer token when there is none.
	ErrNoToken = errors.New("no token stored")
	// ErrInvalidToken is returned when a token cannot be parsed or has expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrRevokedToken is returned when a token was signed out before it expired.
	ErrRevokedToken = errors.New("token has been revoked")
	// ErrNoExpiry is returned when a token carries no exp claim, so it cannot be renewed on schedule.
	ErrNoExpiry = errors.New("token has no expiry")
	// ErrUserNotFound is returned when a user record is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is returned when an account exists but is disabled.
	ErrUserInactive = errors.New("user account is inactive")
)

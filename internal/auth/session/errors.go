package session

import "errors"

var (
	// ErrMissingSecret is returned when no refresh secret was presented.
	ErrMissingSecret = errors.New("refresh secret missing")

	// ErrRefreshTokenInvalid is returned when a presented refresh secret
	// matches no usable record, including secrets consumed by a concurrent
	// rotation. Deliberately indistinguishable from expired/revoked.
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")

	// ErrUserNotFound is returned when a matched record references a user
	// that no longer exists.
	ErrUserNotFound = errors.New("token owner not found")

	// ErrAccessTokenMalformed is returned on the logout path when the access
	// token cannot be decoded at all (expiry alone is tolerated there).
	ErrAccessTokenMalformed = errors.New("malformed access token")

	// ErrInvalidToken is returned when an access token fails verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

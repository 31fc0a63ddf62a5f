package identity

import "errors"

// ErrNotFound is returned when no user record matches the lookup key.
var ErrNotFound = errors.New("user not found")

// IsNotFound reports whether err represents ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

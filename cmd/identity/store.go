package identity

import (
	"context"
	"time"
)

// User is the profile record behind every issued token. Language is nil when
// the user never picked a translation language; Providers lists the federated
// identity providers linked to the account.
type User struct {
	ID        string
	Email     string
	Language  *string
	Providers []string
	CreatedAt time.Time
}

// Store is the read boundary to the externally owned account store.
type Store interface {
	// GetByID loads a user record by its ID. Missing user -> ErrNotFound.
	GetByID(ctx context.Context, id string) (User, error)

	// GetByEmail loads a user record by normalized email. Missing user -> ErrNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)
}

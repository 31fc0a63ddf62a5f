package session

import (
	"context"
	"time"
)

// Record mirrors the lingua.refresh_tokens row.
//
// A record is usable iff !Revoked && ExpiresAt > now. Revoked is terminal:
// the only write after creation is the usable -> revoked transition, made
// either by rotation or by logout. Garbage collection of expired and revoked
// rows is external housekeeping.
type Record struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Store abstracts persistence for refresh-token records.
//
// The hash is salted per record, so none of these methods can look a secret
// up directly; callers fetch usable candidates and match hashes themselves.
type Store interface {
	// Create inserts a usable record and returns its ID.
	Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error)

	// Usable returns every non-revoked, unexpired record system-wide.
	// Cost is O(active records); see the package doc for why.
	Usable(ctx context.Context, now time.Time) ([]Record, error)

	// UsableByUser returns the user's non-revoked, unexpired records.
	// Cost is O(active records per user).
	UsableByUser(ctx context.Context, now time.Time, userID string) ([]Record, error)

	// Revoke marks a usable record revoked and reports whether this call won
	// the transition. A false result means the record was already revoked,
	// typically by a concurrent rotation.
	Revoke(ctx context.Context, id string) (bool, error)

	// WithinTx runs fn against a transactional view of the store. Writes made
	// by fn are committed only if fn returns nil.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

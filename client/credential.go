package client

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims decoded from an access token. Decoding is
// local only; the client never holds the signing key, so claims are trusted
// solely for routing and expiry checks, never for authorization decisions.
type Claims struct {
	UserID    string
	Email     string
	Language  *string
	Providers []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Credential is a usable access token plus its decoded claims.
type Credential struct {
	AccessToken string
	Claims      Claims
}

type wireClaims struct {
	jwt.RegisteredClaims
	Email     string   `json:"email"`
	Language  *string  `json:"language,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

// DecodeClaims parses a token without verifying its signature.
func DecodeClaims(accessToken string) (Claims, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &wc); err != nil {
		return Claims{}, err
	}

	c := Claims{
		UserID:    wc.Subject,
		Email:     wc.Email,
		Language:  wc.Language,
		Providers: wc.Providers,
	}
	if wc.IssuedAt != nil {
		c.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		c.ExpiresAt = wc.ExpiresAt.Time
	}
	return c, nil
}

// Reader resolves the current credential: cached token on the common path, a
// coordinated refresh when the cached token is stale.
type Reader struct {
	store TokenStore
	coord *Coordinator

	// now is swappable for tests.
	now func() time.Time
}

// NewReader wires a Reader over the given store and coordinator.
func NewReader(store TokenStore, coord *Coordinator) *Reader {
	return &Reader{store: store, coord: coord, now: time.Now}
}

// GetCredential returns the current credential, or nil when there is none.
//
// Every failure mode collapses to nil: missing token, undecodable token, and
// a refresh that was rejected or already in flight. Callers treat nil as "no
// usable credential" and decide themselves whether to retry or re-authenticate.
func (r *Reader) GetCredential(ctx context.Context) (*Credential, error) {
	tok, err := r.store.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, nil
	}

	claims, err := DecodeClaims(tok)
	if err != nil {
		return nil, nil
	}

	if claims.ExpiresAt.Before(r.now()) {
		fresh, err := r.coord.Refresh(ctx)
		if err != nil || fresh == "" {
			return nil, nil
		}
		freshClaims, err := DecodeClaims(fresh)
		if err != nil {
			return nil, nil
		}
		return &Credential{AccessToken: fresh, Claims: freshClaims}, nil
	}

	return &Credential{AccessToken: tok, Claims: claims}, nil
}

package authapi

import (
	"context"
	"errors"

	"lingua/cmd/identity"
)

var (
	// ErrInvalidCredentials indicates the email/password pair failed verification.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrExchangeRejected indicates the authorization code could not be exchanged.
	ErrExchangeRejected = errors.New("authorization code rejected")
	// ErrVerifierUnconfigured indicates no real collaborator was wired in.
	ErrVerifierUnconfigured = errors.New("credential verifier not configured")
)

// CredentialVerifier turns an email/password pair into a verified user
// record. Password handling (hashing scheme, account lookup) lives entirely
// behind this boundary.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (identity.User, error)
}

// CodeExchanger exchanges a federated-identity authorization code for a
// verified email address. The federation protocol itself lives behind this
// boundary.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (email string, err error)
}

// DenyAllVerifier is the default CredentialVerifier: it rejects everything,
// so a deployment that forgets to wire a real one fails closed.
type DenyAllVerifier struct{}

func (DenyAllVerifier) Verify(_ context.Context, _, _ string) (identity.User, error) {
	return identity.User{}, ErrVerifierUnconfigured
}

// DenyAllExchanger is the default CodeExchanger; same fail-closed rationale.
type DenyAllExchanger struct{}

func (DenyAllExchanger) Exchange(_ context.Context, _ string) (string, error) {
	return "", ErrVerifierUnconfigured
}

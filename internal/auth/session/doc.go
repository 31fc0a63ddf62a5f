// Package session implements Lingua's auth token lifecycle.
//
// It issues short-lived signed access tokens together with long-lived opaque
// refresh secrets, rotates the refresh secret on every refresh call, and
// revokes it on logout. Refresh secrets are stored only as per-record salted
// bcrypt hashes; a stored record is usable iff it is not revoked and not
// expired, and the revoked flag is terminal.
//
// Rotation runs inside a single store transaction with an optimistic
// affected-row check on the revocation update, so two concurrent refresh
// calls presenting the same secret can never both obtain successor pairs.
//
// Transport (HTTP) integration is intentionally out of scope here.
package session

// Package token provides refresh-secret primitives for Lingua.
//
// It is the single source of truth for refresh-secret generation and hashing.
//
// Design goals:
//   - Opaque secrets: random URL-safe base64, 512 bits of entropy by default.
//   - Salted at rest: bcrypt with a per-record salt; the plaintext secret is
//     never stored and the stored hash is not reversible.
//
// Because every hash carries its own salt there is no deterministic lookup
// key: matching a presented secret against storage means comparing it to each
// candidate hash in turn. Stores built on this package must document that
// O(active records) cost.
package token

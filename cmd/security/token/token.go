package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSecretBytes yields 512 bits of entropy per refresh secret.
const DefaultSecretBytes = 64

// NewOpaqueSecret returns a cryptographically random URL-safe secret.
func NewOpaqueSecret(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultSecretBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret computes the at-rest hash of a refresh secret.
//
// bcrypt only consumes the first 72 bytes of its input, shorter than a
// base64-encoded 512-bit secret, so the secret is pre-hashed with SHA-256
// and the 64-char hex digest is what bcrypt salts and hashes.
func HashSecret(secret string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword(preDigest(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// MatchSecret reports whether secret is the preimage of the stored hash.
func MatchSecret(storedHash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), preDigest(secret)) == nil
}

func preDigest(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lingua/cmd/identity"
)

// AccessClaims is the identity envelope carried by every access token.
// Validity is purely a function of the signature and ExpiresAt; claims are
// never persisted and are reconstructible only by verification.
type AccessClaims struct {
	UserID    string
	Email     string
	Language  *string
	Providers []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessTokenClaims struct {
	jwt.RegisteredClaims
	Email     string   `json:"email"`
	Language  *string  `json:"language,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

// Signer issues and verifies HS256 access tokens. It is stateless: no signer
// output is ever written to storage.
type Signer struct {
	issuer string
	ttl    time.Duration
	secret []byte
}

// NewSigner builds a Signer from config. The signing secret must be at least
// 32 bytes.
func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, ErrConfig
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}
	return &Signer{
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		secret: []byte(cfg.JWTSecret),
	}, nil
}

// TTL returns the configured access-token lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue signs an access token for the user's profile claims.
func (s *Signer) Issue(user identity.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.ttl)

	claims := accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:     user.Email,
		Language:  user.Language,
		Providers: user.Providers,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, and expiry, and returns the claims.
func (s *Signer) Verify(token string) (AccessClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}
	return toAccessClaims(claims), nil
}

// VerifyAllowExpired behaves like Verify but tolerates an expired token:
// the signature must still check out, so the subject claim remains
// trustworthy. Used by logout, where clients routinely hold stale tokens.
func (s *Signer) VerifyAllowExpired(token string) (AccessClaims, error) {
	claims, err := s.parse(token)
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return AccessClaims{}, ErrAccessTokenMalformed
	}
	return toAccessClaims(claims), nil
}

// parse returns decoded claims; on jwt.ErrTokenExpired the claims are still
// populated (the signature was verified before claim validation).
func (s *Signer) parse(token string) (*accessTokenClaims, error) {
	claims := &accessTokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	return claims, err
}

func toAccessClaims(c *accessTokenClaims) AccessClaims {
	out := AccessClaims{
		UserID:    c.Subject,
		Email:     c.Email,
		Language:  c.Language,
		Providers: c.Providers,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

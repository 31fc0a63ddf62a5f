package session

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config defines all runtime configuration for the token lifecycle.
//
// It controls access-token TTL, the refresh validity window, refresh entropy
// size, bcrypt cost, and the HS256 signing secret. It is intentionally
// explicit and environment-driven so that deployments can tune security
// parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens.
	Issuer string

	// JWTSecret is the symmetric HS256 signing key (min 32 bytes).
	JWTSecret string

	// AccessTokenTTL defines the lifetime of signed access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the validity window of refresh records.
	RefreshTokenTTL time.Duration

	// SecretBytes defines the number of random bytes used to generate
	// opaque refresh secrets.
	SecretBytes int

	// BcryptCost is the bcrypt work factor for refresh-secret hashes.
	BcryptCost int
}

// DefaultConfig returns a secure default configuration suitable for development.
//
// Production environments should override values via environment variables.
func DefaultConfig() Config {
	return Config{
		Issuer:          "lingua",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		SecretBytes:     64,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - LINGUA_AUTH_JWT_SECRET (min 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - LINGUA_AUTH_ISSUER
//   - LINGUA_AUTH_ACCESS_TTL
//   - LINGUA_AUTH_REFRESH_TTL
//   - LINGUA_AUTH_SECRET_BYTES
//   - LINGUA_AUTH_BCRYPT_COST
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("LINGUA_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("LINGUA_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("LINGUA_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("LINGUA_AUTH_SECRET_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 128 {
			return Config{}, ErrConfig
		}
		cfg.SecretBytes = n
	}

	if v := os.Getenv("LINGUA_AUTH_BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return Config{}, ErrConfig
		}
		cfg.BcryptCost = n
	}

	cfg.JWTSecret = os.Getenv("LINGUA_AUTH_JWT_SECRET")
	if len(cfg.JWTSecret) < 32 {
		return Config{}, ErrConfig
	}

	// Invariant: access tokens must be strictly shorter-lived than refresh records.
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}

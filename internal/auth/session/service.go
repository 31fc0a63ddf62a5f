package session

import (
	"context"
	"time"

	"lingua/cmd/identity"
	"lingua/cmd/security/token"
)

// Service implements the high-level token lifecycle operations:
// issuance on login, rotation on refresh, revocation on logout.
type Service struct {
	cfg    Config
	store  Store
	users  identity.Store
	signer *Signer
}

// Issued is the result of issuing or rotating a token pair. RefreshSecret is
// the only copy of the plaintext secret that will ever exist outside the
// client; storage keeps a salted hash.
type Issued struct {
	AccessToken      string
	RefreshSecret    string
	ExpiresIn        int64 // access-token lifetime, seconds
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// NewService constructs a Service from its collaborators.
func NewService(cfg Config, store Store, users identity.Store, signer *Signer) *Service {
	return &Service{cfg: cfg, store: store, users: users, signer: signer}
}

// Signer exposes the access-token signer for verification middleware.
func (s *Service) Signer() *Signer { return s.signer }

// RefreshTTL returns the refresh validity window.
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTokenTTL }

// Issue mints a fresh access token + refresh secret for the user.
//
// When priorSecret is non-empty (login after an earlier session, or
// rotation), the user's usable records are scanned for a hash match and the
// matched record is revoked. A missing match is deliberately not fatal:
// issuance proceeds anyway, and callers that need strict rotation check the
// rotated result themselves, as Rotate does.
func (s *Service) Issue(ctx context.Context, now time.Time, user identity.User, priorSecret string) (Issued, error) {
	issued, _, err := s.issue(ctx, s.store, now, user, priorSecret)
	return issued, err
}

func (s *Service) issue(ctx context.Context, st Store, now time.Time, user identity.User, priorSecret string) (Issued, bool, error) {
	rotated := false
	if priorSecret != "" {
		prior, err := st.UsableByUser(ctx, now, user.ID)
		if err != nil {
			return Issued{}, false, err
		}
		for _, rec := range prior {
			if !token.MatchSecret(rec.TokenHash, priorSecret) {
				continue
			}
			rotated, err = st.Revoke(ctx, rec.ID)
			if err != nil {
				return Issued{}, false, err
			}
			break
		}
	}

	accessToken, accessExp, err := s.signer.Issue(user, now)
	if err != nil {
		return Issued{}, rotated, err
	}

	secret, err := token.NewOpaqueSecret(s.cfg.SecretBytes)
	if err != nil {
		return Issued{}, rotated, err
	}
	hash, err := token.HashSecret(secret, s.cfg.BcryptCost)
	if err != nil {
		return Issued{}, rotated, err
	}

	refreshExp := now.Add(s.cfg.RefreshTokenTTL)
	if _, err := st.Create(ctx, now, user.ID, hash, refreshExp); err != nil {
		return Issued{}, rotated, err
	}

	return Issued{
		AccessToken:      accessToken,
		RefreshSecret:    secret,
		ExpiresIn:        int64(s.cfg.AccessTokenTTL.Seconds()),
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, rotated, nil
}

// Rotate exchanges a presented refresh secret for a fresh pair.
//
// The presented secret is the sole credential: it is matched against every
// usable record (hash comparison per candidate — bcrypt salts per record, so
// there is no lookup key). The whole find/revoke/create sequence runs in one
// store transaction, and the revocation's affected-row check decides races:
// of two concurrent calls with the same secret, exactly one commits.
func (s *Service) Rotate(ctx context.Context, now time.Time, presented string) (identity.User, Issued, error) {
	if presented == "" {
		return identity.User{}, Issued{}, ErrMissingSecret
	}

	var (
		user   identity.User
		issued Issued
	)
	err := s.store.WithinTx(ctx, func(st Store) error {
		candidates, err := st.Usable(ctx, now)
		if err != nil {
			return err
		}

		var match *Record
		for i := range candidates {
			if token.MatchSecret(candidates[i].TokenHash, presented) {
				match = &candidates[i]
				break
			}
		}
		if match == nil {
			return ErrRefreshTokenInvalid
		}

		user, err = s.users.GetByID(ctx, match.UserID)
		if err != nil {
			if identity.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		var rotated bool
		issued, rotated, err = s.issue(ctx, st, now, user, presented)
		if err != nil {
			return err
		}
		if !rotated {
			// A concurrent rotation consumed the record between the scan and
			// the revocation update. Roll back; the racer's pair stands.
			return ErrRefreshTokenInvalid
		}
		return nil
	})
	if err != nil {
		return identity.User{}, Issued{}, err
	}
	return user, issued, nil
}

// RevokeOnLogout invalidates the refresh record belonging to the presented
// secret.
//
// The access token resolves the owning user and may be expired — logout must
// never strand a client holding a stale token — but it must decode with a
// valid signature. The operation is idempotent: an already-revoked, expired,
// or unknown secret is not an error, and the caller always gets an
// acknowledgement so the client can clear local state.
func (s *Service) RevokeOnLogout(ctx context.Context, now time.Time, accessToken, refreshSecret string) error {
	claims, err := s.signer.VerifyAllowExpired(accessToken)
	if err != nil {
		return ErrAccessTokenMalformed
	}

	candidates, err := s.store.UsableByUser(ctx, now, claims.UserID)
	if err != nil {
		return err
	}
	for _, rec := range candidates {
		if !token.MatchSecret(rec.TokenHash, refreshSecret) {
			continue
		}
		if _, err := s.store.Revoke(ctx, rec.ID); err != nil {
			return err
		}
		break
	}
	return nil
}

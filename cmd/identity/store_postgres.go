package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
// Schema identifiers are validated to avoid SQL injection via identifiers.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "lingua").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "lingua"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// GetByID loads a user record by its ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, "id = $1", strings.TrimSpace(id))
}

// GetByEmail loads a user record by normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getUser(ctx, "email = $1", NormalizeEmail(email))
}

func (s *PostgresStore) getUser(ctx context.Context, where, arg string) (User, error) {
	if arg == "" {
		return User{}, ErrNotFound
	}

	q := fmt.Sprintf(`
		SELECT id, email, language, providers, created_at
		FROM %q.users
		WHERE %s
	`, s.schema, where)

	var u User
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Language,
		&u.Providers,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	if u.Providers == nil {
		u.Providers = []string{}
	}
	return u, nil
}

package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using PostgreSQL (lingua.refresh_tokens).
type PostgresStore struct {
	q    querier
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed refresh-token store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{q: pool, pool: pool}
}

// Create inserts a new refresh-token record and returns its ULID.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id := ulid.Make().String()

	_, err := s.q.Exec(ctx, `
		INSERT INTO lingua.refresh_tokens (
			id, user_id, token_hash, expires_at, revoked, created_at
		) VALUES (
			$1, $2, $3, $4, FALSE, $5
		)
	`, id, userID, tokenHash, expiresAt, now)
	if err != nil {
		return "", err
	}

	return id, nil
}

// Usable returns every non-revoked, unexpired record.
func (s *PostgresStore) Usable(ctx context.Context, now time.Time) ([]Record, error) {
	return s.usable(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM lingua.refresh_tokens
		WHERE revoked = FALSE AND expires_at > $1
	`, now)
}

// UsableByUser returns the user's non-revoked, unexpired records.
func (s *PostgresStore) UsableByUser(ctx context.Context, now time.Time, userID string) ([]Record, error) {
	return s.usable(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM lingua.refresh_tokens
		WHERE revoked = FALSE AND expires_at > $1 AND user_id = $2
	`, now, userID)
}

func (s *PostgresStore) usable(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.TokenHash, &r.ExpiresAt, &r.Revoked, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Revoke flips the terminal revoked flag. The revoked = FALSE guard plus the
// affected-row check is the optimistic-concurrency barrier that keeps one
// secret from yielding two successor pairs under concurrent rotation.
func (s *PostgresStore) Revoke(ctx context.Context, id string) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE lingua.refresh_tokens
		SET revoked = TRUE
		WHERE id = $1 AND revoked = FALSE
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// WithinTx runs fn against a transaction-scoped store. When the receiver is
// already transactional, fn joins the open transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&PostgresStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

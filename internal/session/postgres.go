package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kanatype/internal/models"
)

// PostgresStore persists sessions in one row per token, indexed on expiry
// for the sweep.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS game_sessions (
	id         uuid PRIMARY KEY,
	seed       bigint      NOT NULL,
	issued_at  timestamptz NOT NULL,
	expires_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS game_sessions_expires_at_idx ON game_sessions (expires_at);
`

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, sessionSchema); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Issue(ctx context.Context, seed uint32, ttl time.Duration) (models.Session, error) {
	now := time.Now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		Seed:      seed,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_sessions (id, seed, issued_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.ID, int64(sess.Seed), sess.IssuedAt, sess.ExpiresAt)
	if err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// Consume deletes and returns in one statement; the RETURNING clause is what
// makes the read-and-delete atomic.
func (s *PostgresStore) Consume(ctx context.Context, id string) (*models.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var seed int64
	sess := models.Session{ID: id}
	err := s.pool.QueryRow(ctx,
		`DELETE FROM game_sessions WHERE id = $1 RETURNING seed, issued_at, expires_at`,
		id).Scan(&seed, &sess.IssuedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.Seed = uint32(seed)
	return &sess, nil
}

func (s *PostgresStore) Sweep(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM game_sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

package leaderboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kanatype/internal/models"
)

// PostgresStore keeps one row per user, indexed on score descending for the
// ranking queries.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const leaderboardSchema = `
CREATE TABLE IF NOT EXISTS leaderboard (
	user_id    text PRIMARY KEY,
	username   text        NOT NULL,
	best_score integer     NOT NULL,
	best_kpm   integer     NOT NULL,
	played_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS leaderboard_best_score_idx ON leaderboard (best_score DESC);
`

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, leaderboardSchema); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// UpsertBest is a single conditional write scoped to one user id; no
// multi-row transaction needed. RowsAffected decides isNewRecord.
func (s *PostgresStore) UpsertBest(ctx context.Context, entry models.BestScore) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO leaderboard (user_id, username, best_score, best_kpm, played_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    best_score = EXCLUDED.best_score,
		    best_kpm = EXCLUDED.best_kpm,
		    played_at = EXCLUDED.played_at
		WHERE leaderboard.best_score < EXCLUDED.best_score`,
		entry.UserID, entry.Username, entry.Score, entry.KPM)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) TopN(ctx context.Context, n int) ([]models.RankingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, best_score, best_kpm, played_at
		FROM leaderboard
		ORDER BY best_score DESC, played_at ASC
		LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RankingEntry
	rank := 0
	for rows.Next() {
		rank++
		e := models.RankingEntry{Rank: rank}
		if err := rows.Scan(&e.Username, &e.Score, &e.KPM, &e.PlayedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) UserBest(ctx context.Context, userID string) (*models.RankingEntry, error) {
	e := models.RankingEntry{}
	err := s.pool.QueryRow(ctx, `
		SELECT username, best_score, best_kpm, played_at,
		       1 + (SELECT count(*) FROM leaderboard b WHERE b.best_score > leaderboard.best_score)
		FROM leaderboard
		WHERE user_id = $1`, userID).Scan(&e.Username, &e.Score, &e.KPM, &e.PlayedAt, &e.Rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

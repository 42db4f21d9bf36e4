// Package leaderboard stores one personal-best row per user and serves the
// ranking reads. The best-score write is an idempotent conditional upsert:
// insert, or update only when the new score is strictly greater.
package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"kanatype/internal/models"
)

type Store interface {
	// UpsertBest persists the entry when it beats the stored best. Returns
	// whether a new record was written. Submitting the same score twice
	// neither duplicates the row nor lowers a higher best.
	UpsertBest(ctx context.Context, entry models.BestScore) (bool, error)
	// TopN returns up to n rows ordered by score descending, ranked from 1.
	TopN(ctx context.Context, n int) ([]models.RankingEntry, error)
	// UserBest returns one user's best with its rank, nil when unknown.
	UserBest(ctx context.Context, userID string) (*models.RankingEntry, error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]models.BestScore
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]models.BestScore)}
}

func (s *MemoryStore) UpsertBest(_ context.Context, entry models.BestScore) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.rows[entry.UserID]
	if ok && prev.Score >= entry.Score {
		return false, nil
	}
	if entry.PlayedAt.IsZero() {
		entry.PlayedAt = time.Now()
	}
	s.rows[entry.UserID] = entry
	return true, nil
}

func (s *MemoryStore) sorted() []models.BestScore {
	rows := lo.Values(s.rows)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].PlayedAt.Before(rows[j].PlayedAt)
	})
	return rows
}

func (s *MemoryStore) TopN(_ context.Context, n int) ([]models.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.sorted()
	if n < len(rows) {
		rows = rows[:n]
	}
	return lo.Map(rows, func(r models.BestScore, i int) models.RankingEntry {
		return models.RankingEntry{
			Rank:     i + 1,
			Username: r.Username,
			Score:    r.Score,
			KPM:      r.KPM,
			PlayedAt: r.PlayedAt,
		}
	}), nil
}

func (s *MemoryStore) UserBest(_ context.Context, userID string) (*models.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[userID]
	if !ok {
		return nil, nil
	}
	rank := 1
	for _, other := range s.rows {
		if other.Score > row.Score {
			rank++
		}
	}
	return &models.RankingEntry{
		Rank:     rank,
		Username: row.Username,
		Score:    row.Score,
		KPM:      row.KPM,
		PlayedAt: row.PlayedAt,
	}, nil
}

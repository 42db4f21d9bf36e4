// Package session manages one-time seeded game tokens. Consume is a single
// atomic read-and-delete in every implementation: two concurrent submissions
// can never redeem one token.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kanatype/internal/models"
)

type Store interface {
	// Issue creates a session holding the scheduler seed, valid for ttl.
	Issue(ctx context.Context, seed uint32, ttl time.Duration) (models.Session, error)
	// Consume atomically removes and returns the session, nil when absent.
	// An expired session is still returned (deleted) so the caller can
	// distinguish "expired" from "never existed".
	Consume(ctx context.Context, id string) (*models.Session, error)
	// Sweep purges expired sessions, returning how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in a mutex-guarded map. The default when no
// database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session), now: time.Now}
}

func (s *MemoryStore) Issue(_ context.Context, seed uint32, ttl time.Duration) (models.Session, error) {
	now := s.now()
	sess := models.Session{
		ID:        uuid.NewString(),
		Seed:      seed,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *MemoryStore) Consume(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, id)
	return &sess, nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count is exposed for health reporting.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

package session_test

import (
	"context"
	"testing"
	"time"

	"kanatype/internal/session"
)

func TestIssueAndConsumeOnce(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	sess, err := store.Issue(ctx, 12345, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if sess.ID == "" || sess.Seed != 12345 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !sess.ExpiresAt.After(sess.IssuedAt) {
		t.Error("expiry must be after issuance")
	}

	got, err := store.Consume(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got == nil || got.Seed != 12345 {
		t.Fatalf("Consume returned %+v", got)
	}

	// Second consumption of the same token must find nothing.
	got, err = store.Consume(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got != nil {
		t.Error("token consumed twice")
	}
}

func TestConsumeUnknown(t *testing.T) {
	store := session.NewMemoryStore()
	got, err := store.Consume(context.Background(), "nope")
	if err != nil || got != nil {
		t.Errorf("unknown token: got %+v, err %v", got, err)
	}
}

func TestConsumeExpiredStillReturned(t *testing.T) {
	// Expired sessions are returned (and deleted) so the verifier can tell
	// "expired" apart from "never existed".
	store := session.NewMemoryStore()
	ctx := context.Background()
	sess, _ := store.Issue(ctx, 7, -time.Minute)
	got, err := store.Consume(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("expired token should still be consumable once: %+v, %v", got, err)
	}
	if !got.ExpiresAt.Before(time.Now()) {
		t.Error("expiry should be in the past")
	}
}

func TestSweep(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	expired, _ := store.Issue(ctx, 1, -time.Minute)
	live, _ := store.Issue(ctx, 2, time.Minute)

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("swept %d sessions, want 1", removed)
	}
	if got, _ := store.Consume(ctx, expired.ID); got != nil {
		t.Error("swept session still consumable")
	}
	if got, _ := store.Consume(ctx, live.ID); got == nil {
		t.Error("live session was swept")
	}
}

func TestCount(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	if store.Count() != 0 {
		t.Error("fresh store should be empty")
	}
	sess, _ := store.Issue(ctx, 1, time.Minute)
	if store.Count() != 1 {
		t.Error("count should track issuance")
	}
	store.Consume(ctx, sess.ID)
	if store.Count() != 0 {
		t.Error("count should track consumption")
	}
}

package play_test

import (
	"testing"

	"kanatype/internal/engine"
	"kanatype/internal/kana"
	"kanatype/internal/models"
	"kanatype/internal/play"
)

var nekoPool = []models.Word{{Display: "猫", Phonetic: "ねこ"}}

func playingEngine(t *testing.T, seed uint32) *play.Engine {
	t.Helper()
	e := play.New(nekoPool)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.State() != play.Preparing {
		t.Fatalf("state = %v, want preparing", e.State())
	}
	if err := e.Begin("game-1", seed); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return e
}

func TestLifecycle(t *testing.T) {
	e := play.New(nekoPool)
	if e.State() != play.Idle {
		t.Fatalf("fresh engine state = %v, want idle", e.State())
	}
	if _, err := e.Key("n", 0); err == nil {
		t.Error("keys before playing must error")
	}

	e = playingEngine(t, 12345)
	if e.State() != play.Playing {
		t.Fatalf("state = %v, want playing", e.State())
	}
	w, hint := e.CurrentWord()
	if w.Phonetic != "ねこ" {
		t.Errorf("first word = %q, want ねこ", w.Phonetic)
	}
	if hint != "ne" {
		t.Errorf("hint = %q, want ne", hint)
	}

	if err := e.Start(); err == nil {
		t.Error("double start must error")
	}

	e.Tick(engine.DefaultTimeSec + 1)
	if e.State() != play.Finished {
		t.Errorf("state after timer expiry = %v, want finished", e.State())
	}
}

func TestFailReturnsToIdle(t *testing.T) {
	e := play.New(nekoPool)
	_ = e.Start()
	e.Fail("could not reach the server")
	if e.State() != play.Idle {
		t.Errorf("state after fail = %v, want idle", e.State())
	}
	if e.FailMessage() == "" {
		t.Error("fail message must be user visible")
	}
}

func TestTypeWholeWord(t *testing.T) {
	e := playingEngine(t, 12345)

	times := []float64{400, 900, 1400, 2000}
	for i, key := range []string{"n", "e", "k", "o"} {
		res, err := e.Key(key, times[i])
		if err != nil {
			t.Fatalf("Key(%q): %v", key, err)
		}
		if res == kana.Reject {
			t.Fatalf("key %q rejected", key)
		}
	}

	if e.Score() != 32 {
		t.Errorf("score = %d, want 32", e.Score())
	}
	// Perfect 2-token word extends time by 1s.
	if e.RemainingSec() != engine.DefaultTimeSec+1 {
		t.Errorf("remaining = %v, want %v", e.RemainingSec(), engine.DefaultTimeSec+1)
	}

	// A fresh word was emitted from the schedule.
	w, _ := e.CurrentWord()
	if w.Phonetic != "ねこ" {
		t.Errorf("next word = %q, want ねこ (single-word pool)", w.Phonetic)
	}

	sub := e.Submission("u1", "alice")
	if len(sub.KeyLog) != 4 {
		t.Errorf("key log has %d entries, want 4", len(sub.KeyLog))
	}
	if len(sub.PlayedWords) != 2 {
		t.Errorf("played words has %d entries, want 2 (completed + on screen)", len(sub.PlayedWords))
	}
	if sub.Score == nil || *sub.Score != 32 {
		t.Error("submission must carry the claimed score")
	}
}

func TestWrongKeyPenalty(t *testing.T) {
	e := playingEngine(t, 12345)
	if res, _ := e.Key("q", 100); res != kana.Reject {
		t.Fatal("q should reject against ねこ")
	}
	if e.RemainingSec() != engine.DefaultTimeSec-engine.ErrorPenaltySec {
		t.Errorf("remaining = %v, want penalty applied", e.RemainingSec())
	}
}

func TestTimeCapAndFinalStats(t *testing.T) {
	e := playingEngine(t, 12345)
	// Type many perfect words without ticking; remaining must never exceed
	// the ceiling.
	for i := 0; i < 100; i++ {
		for _, key := range []string{"n", "e", "k", "o"} {
			if _, err := e.Key(key, float64(i*200)); err != nil {
				t.Fatal(err)
			}
		}
		if e.RemainingSec() > engine.MaxTimeSec {
			t.Fatalf("remaining %v exceeded ceiling", e.RemainingSec())
		}
	}

	e.Tick(30)
	e.Tick(500)
	if e.State() != play.Finished {
		t.Fatal("engine should be finished")
	}
	stats := e.FinalStats()
	if stats.Words != 100 {
		t.Errorf("words = %d, want 100", stats.Words)
	}
	if stats.Accuracy != 1 {
		t.Errorf("accuracy = %v, want 1", stats.Accuracy)
	}
	if stats.KPM == 0 {
		t.Error("kpm should be nonzero for a typed session")
	}
	if stats.Score != e.Score() {
		t.Error("stats score must match engine score")
	}
}

// Package play is the client-side live engine: it consumes the scheduler and
// the shared scoring simulator in real time and emits the key and played-word
// logs a submission is later verified against. It runs single-threaded, one
// session per tab, driven by a timer tick plus input callbacks.
package play

import (
	"errors"

	"kanatype/internal/engine"
	"kanatype/internal/kana"
	"kanatype/internal/models"
	"kanatype/internal/prng"
	"kanatype/internal/schedule"
)

type State int

const (
	Idle State = iota
	Preparing
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Preparing:
		return "preparing"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

var (
	ErrNotIdle    = errors.New("session already started")
	ErrNotPlaying = errors.New("session not playing")
)

// Stats is the frozen end-of-session summary.
type Stats struct {
	Score    int
	Accuracy float64
	KPM      int
	Words    int
}

// Engine advances one typing session. Not safe for concurrent use; the play
// model is cooperative within a single tab.
type Engine struct {
	state  State
	active []models.Word
	gameID string
	rng    *prng.Source
	sim    engine.Simulator

	remainingSec float64
	elapsedSec   float64
	words        int
	failMessage  string

	keyLog      []models.KeyLogEntry
	playedWords []models.PlayedWordEntry
}

func New(active []models.Word) *Engine {
	return &Engine{state: Idle, active: active, remainingSec: engine.DefaultTimeSec}
}

func (e *Engine) State() State { return e.state }

func (e *Engine) GameID() string { return e.gameID }

// Start moves Idle to Preparing while a session token is requested
// externally.
func (e *Engine) Start() error {
	if e.state != Idle {
		return ErrNotIdle
	}
	e.state = Preparing
	return nil
}

// Begin consumes the issued session token: seeds the scheduler, emits the
// first word and enters Playing.
func (e *Engine) Begin(gameID string, seed uint32) error {
	if e.state != Preparing {
		return errors.New("session token received outside preparing state")
	}
	e.gameID = gameID
	e.rng = prng.New(seed)
	e.state = Playing
	e.nextWord()
	return nil
}

// Fail returns to Idle with a user-visible message after an unrecoverable
// session error.
func (e *Engine) Fail(message string) {
	e.state = Idle
	e.failMessage = message
	e.rng = nil
}

func (e *Engine) FailMessage() string { return e.failMessage }

func (e *Engine) nextWord() {
	w := schedule.SelectWord(e.active, e.elapsedSec, e.rng)
	e.playedWords = append(e.playedWords, models.PlayedWordEntry{
		Display:      w.Display,
		Phonetic:     w.Phonetic,
		StartTimeSec: e.elapsedSec,
	})
	e.sim.StartWord(w)
}

// CurrentWord exposes the word on screen and its canonical remaining hint.
func (e *Engine) CurrentWord() (models.Word, string) {
	run := e.sim.Run()
	if run == nil {
		return models.Word{}, ""
	}
	return run.Word, run.Hint()
}

// Key applies one keystroke at the given session-relative time. Every key is
// logged, wrong ones included: the verifier replays the full stream, so an
// unlogged mistake would surface as a score mismatch.
func (e *Engine) Key(key string, atMs float64) (kana.MatchResult, error) {
	if e.state != Playing {
		return kana.Reject, ErrNotPlaying
	}
	e.keyLog = append(e.keyLog, models.KeyLogEntry{Key: key, TimeMs: atMs})
	out := e.sim.Key(key)
	if out.Result == kana.Reject {
		e.remainingSec -= engine.ErrorPenaltySec
		if e.remainingSec < 0 {
			e.remainingSec = 0
		}
	}
	if out.WordDone {
		e.words++
		if out.TimeBonusSec > 0 {
			e.remainingSec += float64(out.TimeBonusSec)
			if e.remainingSec > engine.MaxTimeSec {
				e.remainingSec = engine.MaxTimeSec
			}
		}
		e.nextWord()
	}
	return out.Result, nil
}

// Tick advances the session clock. When the remaining time reaches zero the
// state freezes to Finished.
func (e *Engine) Tick(dtSec float64) {
	if e.state != Playing {
		return
	}
	e.elapsedSec += dtSec
	e.remainingSec -= dtSec
	if e.remainingSec <= 0 {
		e.remainingSec = 0
		e.state = Finished
	}
}

func (e *Engine) RemainingSec() float64 { return e.remainingSec }

func (e *Engine) ElapsedSec() float64 { return e.elapsedSec }

func (e *Engine) Score() int { return e.sim.Score }

// FinalStats freezes and summarizes the session.
func (e *Engine) FinalStats() Stats {
	minutes := e.elapsedSec / 60
	kpm := 0
	if minutes > 0 {
		kpm = int(float64(e.sim.CorrectKeys)/minutes + 0.5)
	}
	return Stats{
		Score:    e.sim.Score,
		Accuracy: e.sim.Accuracy(),
		KPM:      kpm,
		Words:    e.words,
	}
}

// Submission packages the session logs for score submission. Not used for
// custom or offline word lists.
func (e *Engine) Submission(userID, username string) models.SubmitRequest {
	score := e.sim.Score
	return models.SubmitRequest{
		GameID:      e.gameID,
		Score:       &score,
		KeyLog:      e.keyLog,
		PlayedWords: e.playedWords,
		DurationSec: e.elapsedSec,
		UserID:      userID,
		Username:    username,
	}
}

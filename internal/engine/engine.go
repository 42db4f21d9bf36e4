// Package engine is the one shared pure scoring module consumed by both the
// live play engine and the replay verifier. Client and server can only agree
// on a score because they run this exact arithmetic.
package engine

import (
	"kanatype/internal/kana"
	"kanatype/internal/models"
)

const (
	BaseScorePerChar = 5
	ComboMultiplier  = 0.05
	PerfectWordBonus = 20

	DefaultTimeSec  = 60
	MaxTimeSec      = 120
	ErrorPenaltySec = 1
)

// WordScore is the gain for completing a word of the given phonetic length
// at the given combo: floor(length x base x (1 + combo x multiplier)).
func WordScore(length, combo int) int {
	return int(float64(length*BaseScorePerChar) * (1 + float64(combo)*ComboMultiplier))
}

// TimeBonus is the seconds of play a zero-error word earns back.
func TimeBonus(length int) int {
	if b := length / 2; b > 1 {
		return b
	}
	return 1
}

// WordRun tracks progress through one word's tokens.
type WordRun struct {
	Word   models.Word
	Tokens []string
	Index  int
	Buffer string
}

func NewWordRun(w models.Word) *WordRun {
	return &WordRun{Word: w, Tokens: kana.Tokenize(w.Phonetic)}
}

func (r *WordRun) Done() bool {
	return r.Index >= len(r.Tokens)
}

func (r *WordRun) current() (token, next string) {
	token = r.Tokens[r.Index]
	if r.Index+1 < len(r.Tokens) {
		next = r.Tokens[r.Index+1]
	}
	return token, next
}

// Patterns is the acceptable spelling set for the current position.
func (r *WordRun) Patterns() []string {
	if r.Done() {
		return nil
	}
	token, next := r.current()
	return kana.ValidPatterns(token, next)
}

// Hint is the canonical remaining completion for the current position.
func (r *WordRun) Hint() string {
	if r.Done() {
		return ""
	}
	token, next := r.current()
	return kana.CanonicalHint(token, next)
}

// Key applies one keystroke to the run.
func (r *WordRun) Key(key string) kana.MatchResult {
	if r.Done() {
		return kana.Reject
	}
	token, next := r.current()
	patterns := kana.ValidPatterns(token, next)
	res := kana.MatchStep(r.Buffer, key, patterns, kana.AmbiguousNasal(token, next))
	switch res {
	case kana.Continue:
		r.Buffer += key
	case kana.Complete:
		r.Index++
		r.Buffer = ""
	}
	return res
}

// KeyOutcome reports what one keystroke did to the session simulation.
type KeyOutcome struct {
	Result       kana.MatchResult
	WordDone     bool
	ScoreGain    int
	TimeBonusSec int // nonzero only on a zero-error word completion
}

// Simulator drives a full session's scoring over successive words. The combo
// counter is cumulative across words and resets only on a wrong key.
type Simulator struct {
	Score       int
	Combo       int
	CorrectKeys int
	WrongKeys   int

	run     *WordRun
	wordErr bool
}

// StartWord begins simulating the next word.
func (s *Simulator) StartWord(w models.Word) {
	s.run = NewWordRun(w)
	s.wordErr = false
}

// WordInProgress reports whether a started word is still incomplete.
func (s *Simulator) WordInProgress() bool {
	return s.run != nil && !s.run.Done()
}

// Run exposes the current word run for display purposes.
func (s *Simulator) Run() *WordRun {
	return s.run
}

// Key feeds one keystroke through the matcher and the scoring formula.
func (s *Simulator) Key(key string) KeyOutcome {
	if s.run == nil || s.run.Done() {
		s.WrongKeys++
		return KeyOutcome{Result: kana.Reject}
	}
	res := s.run.Key(key)
	out := KeyOutcome{Result: res}
	switch res {
	case kana.Reject:
		s.Combo = 0
		s.WrongKeys++
		s.wordErr = true
	case kana.Continue, kana.Complete:
		s.Combo++
		s.CorrectKeys++
	}
	if res == kana.Complete && s.run.Done() {
		out.WordDone = true
		out.ScoreGain = WordScore(len(s.run.Tokens), s.Combo)
		if !s.wordErr {
			out.ScoreGain += PerfectWordBonus
			out.TimeBonusSec = TimeBonus(len(s.run.Tokens))
		}
		s.Score += out.ScoreGain
	}
	return out
}

// Accuracy is correct keys over all keys, 1 when nothing was typed.
func (s *Simulator) Accuracy() float64 {
	total := s.CorrectKeys + s.WrongKeys
	if total == 0 {
		return 1
	}
	return float64(s.CorrectKeys) / float64(total)
}

package models

import "time"

// Word pairs a display form (may contain kanji or other non-phonetic script)
// with its hiragana phonetic spelling.
type Word struct {
	Display  string `json:"display"`
	Phonetic string `json:"phonetic"`
}

// KeyLogEntry is one client input event, timestamped in milliseconds since
// session start. Client-produced and untrusted.
type KeyLogEntry struct {
	Key    string  `json:"key"`
	TimeMs float64 `json:"timeMs"`
}

// PlayedWordEntry is the word the client says it was shown and when.
type PlayedWordEntry struct {
	Display      string  `json:"display"`
	Phonetic     string  `json:"phonetic"`
	StartTimeSec float64 `json:"startTimeSec"`
}

// Session is a one-time seeded game token. Consumed exactly once, either by
// a score submission or by the expiry sweep.
type Session struct {
	ID        string    `json:"id"`
	Seed      uint32    `json:"seed"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// BestScore is one user's personal-best row.
type BestScore struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	KPM      int       `json:"kpm"`
	PlayedAt time.Time `json:"playedAt"`
}

// RankingEntry is one leaderboard row as returned by ranking reads.
type RankingEntry struct {
	Rank     int       `json:"rank"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	KPM      int       `json:"kpm"`
	PlayedAt time.Time `json:"playedAt"`
}

type StartGameResponse struct {
	GameID string `json:"gameId"`
	Seed   uint32 `json:"seed"`
}

// SubmitRequest is the score-submission payload. Score is a pointer so a
// missing field is distinguishable from zero during structural validation.
type SubmitRequest struct {
	GameID      string            `json:"gameId"`
	Score       *int              `json:"score"`
	KeyLog      []KeyLogEntry     `json:"keyLog"`
	PlayedWords []PlayedWordEntry `json:"playedWords"`
	DurationSec float64           `json:"duration"`
	UserID      string            `json:"userId"`
	Username    string            `json:"username"`
}

type SubmitResponse struct {
	Success       bool   `json:"success"`
	VerifiedScore int    `json:"verifiedScore,omitempty"`
	KPM           int    `json:"kpm,omitempty"`
	IsNewRecord   bool   `json:"isNewRecord,omitempty"`
	Message       string `json:"message,omitempty"`
}

// VerifyResult is the verifier's accept-path output.
type VerifyResult struct {
	VerifiedScore int
	KPM           int
	IsNewRecord   bool
}

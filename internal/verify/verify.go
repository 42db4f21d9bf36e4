// Package verify re-simulates a submitted session against the seeded word
// schedule and the shared scoring engine, and rejects any submission that
// disagrees. Checks run strictly in order and fail fast; every rejection
// carries a distinct machine-readable reason.
package verify

import (
	"context"
	"fmt"
	"time"

	"kanatype/internal/constants"
	"kanatype/internal/engine"
	"kanatype/internal/leaderboard"
	"kanatype/internal/models"
	"kanatype/internal/prng"
	"kanatype/internal/schedule"
	"kanatype/internal/session"
)

// RejectError is a named verification failure. Index is the offending word
// index for the per-word checks, -1 otherwise.
type RejectError struct {
	Reason string
	Index  int
	Detail string
}

func (e *RejectError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s at word %d: %s", e.Reason, e.Index, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
	}
	return e.Reason
}

func reject(reason, detail string) *RejectError {
	return &RejectError{Reason: reason, Index: -1, Detail: detail}
}

func rejectAt(reason string, index int, detail string) *RejectError {
	return &RejectError{Reason: reason, Index: index, Detail: detail}
}

// Reason extracts the machine-readable reason, "" for non-reject errors.
func Reason(err error) string {
	if re, ok := err.(*RejectError); ok {
		return re.Reason
	}
	return ""
}

// Config carries the tunable anomaly thresholds. These are heuristics, not
// proofs; keeping them here lets operators recalibrate without touching the
// check logic.
type Config struct {
	DurationCeilingSec float64
	TimeGraceSec       float64
	SpeedCeilingKPM    float64
	MinAnomalySample   int
	MinIntervalVarMs2  float64
	MaxBurstRatio      float64
	StoreTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		DurationCeilingSec: constants.DefaultDurationCeilingSec,
		TimeGraceSec:       constants.DefaultTimeGraceSec,
		SpeedCeilingKPM:    constants.DefaultSpeedCeilingKPM,
		MinAnomalySample:   constants.DefaultMinAnomalySample,
		MinIntervalVarMs2:  constants.DefaultMinIntervalVarMs2,
		MaxBurstRatio:      constants.DefaultMaxBurstRatio,
		StoreTimeout:       constants.DefaultStoreTimeout,
	}
}

// Verifier replays submissions. Stateless per request: each verification
// touches only its own session row and the submitting user's best-score row.
type Verifier struct {
	Sessions session.Store
	Scores   leaderboard.Store
	Active   []models.Word
	Config   Config
	Now      func() time.Time
}

func New(sessions session.Store, scores leaderboard.Store, active []models.Word, cfg Config) *Verifier {
	return &Verifier{
		Sessions: sessions,
		Scores:   scores,
		Active:   active,
		Config:   cfg,
		Now:      time.Now,
	}
}

// Verify runs the full check sequence and, on acceptance, persists the score
// when it beats the user's stored best.
func (v *Verifier) Verify(ctx context.Context, sub models.SubmitRequest) (models.VerifyResult, error) {
	// Consume before computing anything, so a concurrent duplicate
	// submission cannot race the same token through the checks.
	sess, err := v.consume(ctx, sub.GameID)
	if err != nil {
		return models.VerifyResult{}, err
	}
	if sess == nil {
		return models.VerifyResult{}, reject(constants.RejectNoSession, "unknown or already used token")
	}
	if v.Now().After(sess.ExpiresAt) {
		return models.VerifyResult{}, reject(constants.RejectSessionExpired, "token past ttl")
	}

	if err := structural(sub); err != nil {
		return models.VerifyResult{}, err
	}

	if sub.DurationSec > v.Config.DurationCeilingSec {
		return models.VerifyResult{}, reject(constants.RejectDurationExceeded,
			fmt.Sprintf("%.1fs over %.0fs ceiling", sub.DurationSec, v.Config.DurationCeilingSec))
	}

	serverScore, correctKeys, err := v.replay(sess.Seed, sub)
	if err != nil {
		return models.VerifyResult{}, err
	}

	if serverScore != *sub.Score {
		return models.VerifyResult{}, reject(constants.RejectScoreMismatch,
			fmt.Sprintf("claimed %d, replayed %d", *sub.Score, serverScore))
	}

	kpm := 0
	if minutes := sub.DurationSec / 60; minutes > 0 {
		speed := float64(correctKeys) / minutes
		if speed > v.Config.SpeedCeilingKPM {
			return models.VerifyResult{}, reject(constants.RejectImpossibleSpeed,
				fmt.Sprintf("%.0f kpm over %.0f ceiling", speed, v.Config.SpeedCeilingKPM))
		}
		kpm = int(speed + 0.5)
	}

	if err := v.regularity(sub.KeyLog); err != nil {
		return models.VerifyResult{}, err
	}

	result := models.VerifyResult{VerifiedScore: serverScore, KPM: kpm}
	if sub.UserID != "" {
		isNew, err := v.persistBest(ctx, sub, serverScore, kpm)
		if err != nil {
			return models.VerifyResult{}, err
		}
		result.IsNewRecord = isNew
	}
	return result, nil
}

func (v *Verifier) consume(ctx context.Context, gameID string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, v.Config.StoreTimeout)
	defer cancel()
	sess, err := v.Sessions.Consume(ctx, gameID)
	if err != nil {
		return nil, reject(constants.RejectStorageDown, err.Error())
	}
	return sess, nil
}

func structural(sub models.SubmitRequest) error {
	switch {
	case sub.Score == nil:
		return reject(constants.RejectBadStructure, "score missing")
	case sub.KeyLog == nil:
		return reject(constants.RejectBadStructure, "keyLog missing")
	case len(sub.PlayedWords) == 0:
		return reject(constants.RejectBadStructure, "playedWords empty")
	case sub.DurationSec <= 0:
		return reject(constants.RejectBadStructure, "non-positive duration")
	}
	return nil
}

// replay reruns the scheduler and the shared simulator over the submitted
// logs. Word sequence, time budget and score all come out of this one pass.
func (v *Verifier) replay(seed uint32, sub models.SubmitRequest) (score, correctKeys int, err error) {
	src := prng.New(seed)
	var sim engine.Simulator
	bonusSoFar := 0.0
	keyIdx := 0

	for i, pw := range sub.PlayedWords {
		expected := schedule.SelectWord(v.Active, pw.StartTimeSec, src)
		if expected.Phonetic != pw.Phonetic {
			// The core anti-tamper check: without the seed an attacker
			// cannot predict the word sequence.
			return 0, 0, rejectAt(constants.RejectWordMismatch, i,
				fmt.Sprintf("claimed %q, expected %q", pw.Phonetic, expected.Phonetic))
		}
		if pw.StartTimeSec > engine.DefaultTimeSec+bonusSoFar+v.Config.TimeGraceSec {
			return 0, 0, rejectAt(constants.RejectTimeBudget, i,
				fmt.Sprintf("start %.1fs over budget %.1fs", pw.StartTimeSec, engine.DefaultTimeSec+bonusSoFar))
		}

		sim.StartWord(expected)
		for keyIdx < len(sub.KeyLog) {
			out := sim.Key(sub.KeyLog[keyIdx].Key)
			keyIdx++
			if out.WordDone {
				bonusSoFar += float64(out.TimeBonusSec)
				break
			}
		}
	}
	// Keys past the last reported word cannot add score; exact score
	// equality closes that path.
	return sim.Score, sim.CorrectKeys, nil
}

// regularity applies the statistical bot checks over inter-key intervals.
// Only meaningful above a minimum sample size.
func (v *Verifier) regularity(keys []models.KeyLogEntry) error {
	if len(keys) < v.Config.MinAnomalySample {
		return nil
	}
	intervals := make([]float64, 0, len(keys)-1)
	bursts := 0
	for i := 1; i < len(keys); i++ {
		dt := keys[i].TimeMs - keys[i-1].TimeMs
		intervals = append(intervals, dt)
		if dt <= 0 {
			bursts++
		}
	}
	if len(intervals) == 0 {
		return nil
	}

	mean := 0.0
	for _, dt := range intervals {
		mean += dt
	}
	mean /= float64(len(intervals))
	variance := 0.0
	for _, dt := range intervals {
		variance += (dt - mean) * (dt - mean)
	}
	variance /= float64(len(intervals))

	if variance < v.Config.MinIntervalVarMs2 {
		return reject(constants.RejectTooConsistent,
			fmt.Sprintf("interval variance %.2fms2 below human floor", variance))
	}
	if ratio := float64(bursts) / float64(len(intervals)); ratio > v.Config.MaxBurstRatio {
		return reject(constants.RejectImpossibleBursts,
			fmt.Sprintf("%.0f%% simultaneous keys", ratio*100))
	}
	return nil
}

func (v *Verifier) persistBest(ctx context.Context, sub models.SubmitRequest, score, kpm int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.Config.StoreTimeout)
	defer cancel()
	username := sub.Username
	if username == "" {
		username = "anonymous"
	}
	isNew, err := v.Scores.UpsertBest(ctx, models.BestScore{
		UserID:   sub.UserID,
		Username: username,
		Score:    score,
		KPM:      kpm,
		PlayedAt: v.Now(),
	})
	if err != nil {
		return false, reject(constants.RejectStorageDown, err.Error())
	}
	return isNew, nil
}

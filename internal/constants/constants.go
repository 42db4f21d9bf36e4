package constants

import "time"

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// Verifier rejection reasons. Every rejection carries exactly one of these;
// none is ever coerced into acceptance.
const (
	RejectNoSession        = "no_session"
	RejectSessionExpired   = "session_expired"
	RejectBadStructure     = "bad_structure"
	RejectDurationExceeded = "duration_exceeded"
	RejectWordMismatch     = "word_mismatch"
	RejectTimeBudget       = "time_budget_exceeded"
	RejectScoreMismatch    = "score_mismatch"
	RejectImpossibleSpeed  = "impossible_speed"
	RejectTooConsistent    = "too_consistent"
	RejectImpossibleBursts = "impossible_bursts"
	RejectStorageDown      = "storage_unavailable"
)

// Anomaly-check defaults. Tunable via env so thresholds can be recalibrated
// without touching the verifier logic.
const (
	DefaultDurationCeilingSec = 600
	DefaultTimeGraceSec       = 2
	DefaultSpeedCeilingKPM    = 1200
	DefaultMinAnomalySample   = 40
	DefaultMinIntervalVarMs2  = 25.0
	DefaultMaxBurstRatio      = 0.3
)

const (
	DefaultSessionTTL   = 10 * time.Minute
	DefaultStoreTimeout = 5 * time.Second
)

const (
	DefaultRankingLimit = 20
	MaxRankingLimit     = 100
)

package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kanatype/internal/constants"
	"kanatype/internal/models"
	"kanatype/internal/session"
	"kanatype/internal/verify"
)

func randomSeed() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func requestID(ctx context.Context) string {
	reqID, _ := ctx.Value(constants.RequestIDKey).(string)
	return reqID
}

// startGameHandler issues a one-time seeded session token. A Playing state
// cannot begin without one.
func (app *App) startGameHandler(c *gin.Context) {
	ctx := c.Request.Context()
	seed, err := randomSeed()
	if err != nil {
		logWarn("[request_id=%v] Failed to generate seed: %v", requestID(ctx), err)
		c.JSON(http.StatusInternalServerError, models.SubmitResponse{Success: false, Message: MsgTryLater})
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, app.StoreTimeout)
	defer cancel()
	sess, err := app.Sessions.Issue(storeCtx, seed, app.SessionTTL)
	if err != nil {
		logWarn("[request_id=%v] Session issue failed: %v", requestID(ctx), err)
		c.JSON(http.StatusServiceUnavailable, models.SubmitResponse{Success: false, Message: MsgTryLater})
		return
	}

	logInfo("[request_id=%v] Issued game session %s", requestID(ctx), sess.ID)
	c.JSON(http.StatusOK, models.StartGameResponse{GameID: sess.ID, Seed: sess.Seed})
}

// submitScoreHandler replays the submitted logs against the session's seed
// and persists a verified personal best.
func (app *App) submitScoreHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var sub models.SubmitRequest
	if err := c.ShouldBindJSON(&sub); err != nil {
		logWarn("[request_id=%v] Malformed submission: %v", requestID(ctx), err)
		c.JSON(http.StatusBadRequest, models.SubmitResponse{Success: false, Message: MsgNotVerified})
		return
	}

	result, err := app.Verifier.Verify(ctx, sub)
	if err != nil {
		reason := verify.Reason(err)
		logWarn("[request_id=%v] Submission rejected (%s): %v", requestID(ctx), reason, err)
		c.JSON(http.StatusOK, models.SubmitResponse{Success: false, Message: rejectMessage(reason)})
		return
	}

	logInfo("[request_id=%v] Verified score %d (kpm %d, new record %v) for user %q",
		requestID(ctx), result.VerifiedScore, result.KPM, result.IsNewRecord, sub.UserID)
	c.JSON(http.StatusOK, models.SubmitResponse{
		Success:       true,
		VerifiedScore: result.VerifiedScore,
		KPM:           result.KPM,
		IsNewRecord:   result.IsNewRecord,
	})
}

// rejectMessage maps machine-readable reasons to the user-visible classes:
// restart for session errors, retry-later for storage, and one vague line
// for integrity and anomaly rejections.
func rejectMessage(reason string) string {
	switch reason {
	case constants.RejectNoSession, constants.RejectSessionExpired:
		return MsgSessionRestart
	case constants.RejectStorageDown:
		return MsgTryLater
	default:
		return MsgNotVerified
	}
}

func (app *App) rankingHandler(c *gin.Context) {
	ctx := c.Request.Context()

	limit := constants.DefaultRankingLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > constants.MaxRankingLimit {
		limit = constants.MaxRankingLimit
	}

	storeCtx, cancel := context.WithTimeout(ctx, app.StoreTimeout)
	defer cancel()
	entries, err := app.Scores.TopN(storeCtx, limit)
	if err != nil {
		logWarn("[request_id=%v] Ranking read failed: %v", requestID(ctx), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": MsgTryLater})
		return
	}
	if entries == nil {
		entries = []models.RankingEntry{}
	}

	payload := gin.H{"ranking": entries}
	if userID := c.Query("userId"); userID != "" {
		me, err := app.Scores.UserBest(storeCtx, userID)
		if err != nil {
			logWarn("[request_id=%v] User rank read failed: %v", requestID(ctx), err)
		} else if me != nil {
			payload["me"] = me
		}
	}
	c.JSON(http.StatusOK, payload)
}

func (app *App) healthzHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)

	app.LimiterMutex.RLock()
	limiterCount := len(app.LimiterMap)
	app.LimiterMutex.RUnlock()

	payload := gin.H{
		"status":          "ok",
		"env":             map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"words_loaded":    len(app.RawPool),
		"words_active":    len(app.ActivePool),
		"active_limiters": limiterCount,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          formatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}
	if ms, ok := app.Sessions.(*session.MemoryStore); ok {
		payload["active_sessions"] = ms.Count()
	}
	c.JSON(http.StatusOK, payload)
}

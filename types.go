package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kanatype/internal/leaderboard"
	"kanatype/internal/models"
	"kanatype/internal/session"
	"kanatype/internal/verify"
)

type RateLimiterWithTime struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

type App struct {
	RawPool    []models.Word
	ActivePool []models.Word
	Sessions   session.Store
	Scores     leaderboard.Store
	Verifier   *verify.Verifier

	IsProduction bool
	StartTime    time.Time

	SessionTTL      time.Duration
	StoreTimeout    time.Duration
	RankingCacheAge time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	RateLimiterTTL  time.Duration

	LimiterMap   map[string]*RateLimiterWithTime
	LimiterMutex sync.RWMutex
}

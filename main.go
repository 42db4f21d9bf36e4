package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"kanatype/internal/constants"
	"kanatype/internal/leaderboard"
	"kanatype/internal/schedule"
	"kanatype/internal/session"
	"kanatype/internal/verify"
	"kanatype/internal/wordlist"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	logInfo("Starting Kanatype in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	wordsFile := os.Getenv("WORDS_FILE")
	if wordsFile == "" {
		wordsFile = "data/words.csv"
	}
	rawPool, lineErrs, err := wordlist.LoadFile(wordsFile)
	if err != nil {
		logFatal("Failed to load word corpus: %v", err)
	}
	for _, le := range lineErrs {
		logWarn("Skipping corpus row: %v", le)
	}
	activePool := schedule.ActiveWords(rawPool)
	logInfo("Loaded %d words (%d active, %d rows rejected)", len(rawPool), len(activePool), len(lineErrs))
	if len(activePool) == 0 {
		logWarn("Active pool is empty, scheduler will serve the sentinel word")
	}

	app := &App{
		RawPool:         rawPool,
		ActivePool:      activePool,
		IsProduction:    isProduction,
		StartTime:       time.Now(),
		SessionTTL:      getEnvDuration("SESSION_TTL", constants.DefaultSessionTTL),
		StoreTimeout:    getEnvDuration("STORE_TIMEOUT", constants.DefaultStoreTimeout),
		RankingCacheAge: getEnvDuration("RANKING_CACHE_AGE", 30*time.Second),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
		RateLimiterTTL:  getEnvDuration("RATE_LIMITER_TTL", 1*time.Hour),
		LimiterMap:      make(map[string]*RateLimiterWithTime),
	}

	if err := app.setupStores(); err != nil {
		logFatal("Failed to set up stores: %v", err)
	}

	cfg := verify.DefaultConfig()
	cfg.DurationCeilingSec = getEnvFloat("DURATION_CEILING_SEC", cfg.DurationCeilingSec)
	cfg.TimeGraceSec = getEnvFloat("TIME_GRACE_SEC", cfg.TimeGraceSec)
	cfg.SpeedCeilingKPM = getEnvFloat("SPEED_CEILING_KPM", cfg.SpeedCeilingKPM)
	cfg.MinAnomalySample = getEnvInt("MIN_ANOMALY_SAMPLE", cfg.MinAnomalySample)
	cfg.MinIntervalVarMs2 = getEnvFloat("MIN_INTERVAL_VARIANCE_MS2", cfg.MinIntervalVarMs2)
	cfg.MaxBurstRatio = getEnvFloat("MAX_BURST_RATIO", cfg.MaxBurstRatio)
	cfg.StoreTimeout = app.StoreTimeout
	app.Verifier = verify.New(app.Sessions, app.Scores, app.ActivePool, cfg)

	router := app.buildRouter()

	app.startCleanupRoutines()

	app.startServer(router)
}

func (app *App) buildRouter() *gin.Engine {
	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.POST(RouteStartGame, app.rateLimitMiddleware(), app.startGameHandler)
	router.POST(RouteSubmit, app.rateLimitMiddleware(), app.submitScoreHandler)
	router.GET(RouteRanking, app.rankingHandler)
	router.GET(RouteHealthz, app.healthzHandler)

	return router
}

// setupStores wires Postgres-backed sessions and leaderboard when
// DATABASE_URL is set, in-memory stores otherwise.
func (app *App) setupStores() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logInfo("No DATABASE_URL, using in-memory session and leaderboard stores")
		app.Sessions = session.NewMemoryStore()
		app.Scores = leaderboard.NewMemoryStore()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return err
	}
	sessions, err := session.NewPostgresStore(ctx, pool)
	if err != nil {
		return err
	}
	scores, err := leaderboard.NewPostgresStore(ctx, pool)
	if err != nil {
		return err
	}
	logInfo("Using Postgres session and leaderboard stores")
	app.Sessions = sessions
	app.Scores = scores
	return nil
}

func (app *App) startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}

// startCleanupRoutines runs the best-effort sweeps: expired session tokens
// are harmless until redeemed, so a periodic purge is enough.
func (app *App) startCleanupRoutines() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), app.StoreTimeout)
			removed, err := app.Sessions.Sweep(ctx)
			cancel()
			if err != nil {
				logWarn("Session sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logInfo("Swept %d expired sessions", removed)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			app.cleanupStaleRateLimiters()
		}
	}()

	logInfo("Started cleanup routines for sessions and rate limiters")
}

func (app *App) cleanupStaleRateLimiters() {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()

	cutoffTime := time.Now().Add(-app.RateLimiterTTL)
	removedCount := 0

	for key, limWithTime := range app.LimiterMap {
		if limWithTime.LastAccess.Before(cutoffTime) {
			delete(app.LimiterMap, key)
			removedCount++
		}
	}

	if removedCount > 0 {
		logInfo("Cleaned up %d stale rate limiters", removedCount)
	}
}

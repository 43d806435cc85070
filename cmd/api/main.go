// cmd/api/main.go
// Entry point for the nearby discovery and moderation API.
// Bootstraps storage, locks, services and the HTTP server.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/database"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/lock"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/logger"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/middleware"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
	"github.com/imadgeboyega/kiekky-nearby/internal/config"
	"github.com/imadgeboyega/kiekky-nearby/internal/discovery"
	"github.com/imadgeboyega/kiekky-nearby/internal/moderation"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

const serviceName = "nearby-api"

var startTime = time.Now()

func main() {
	// 1. Environment and configuration
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "No .env file found (%v), using environment variables\n", err)
	}

	cfg := config.Load()

	logCfg := logger.Config{
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		FileEnabled:   cfg.LogFileEnabled,
		FilePath:      cfg.LogFilePath,
		RotationSize:  cfg.LogRotationSize,
		RetentionDays: cfg.LogRetentionDays,
		ServiceName:   serviceName,
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	audit := logger.NewAuditLogger(logCfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Configuration validation failed")
	}
	log.Info().Str("environment", cfg.Environment).Str("store", cfg.Store).Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Storage
	usersRepo, moderationRepo, db := openStores(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	// 3. Entity locks
	locker, redisClient := openLocker(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 4. Services
	hub := moderation.NewHub()
	go hub.Run(ctx)

	discoveryService := discovery.NewService(usersRepo, discovery.Config{
		Weights:         &discovery.Weights{TagSim: cfg.TagWeight, Distance: cfg.DistanceWeight},
		HalfLifeMeters:  cfg.HalfLifeMeters,
		SearchRadius:    cfg.SearchRadius,
		CandidateLimit:  cfg.CandidateLimit,
		DefaultPageSize: cfg.DefaultPageSize,
	})
	usersService := users.NewService(usersRepo)
	reportService := moderation.NewReportService(usersRepo, moderationRepo, locker, hub, cfg.ReportedUsersWindow)
	dispatcher := moderation.NewDispatcher(usersRepo, moderationRepo, locker, hub, audit)

	moderation.NewScheduler(moderationRepo, cfg.GaugeRefreshEvery).Start(ctx)

	// 5. Routes
	router := mux.NewRouter()
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)

	router.HandleFunc("/health", healthCheck(db, redisClient)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	discovery.RegisterRoutes(router, discovery.NewHandler(discoveryService), authMiddleware)
	users.RegisterRoutes(router, users.NewHandler(usersService), authMiddleware)
	moderation.RegisterRoutes(router, moderation.NewHandler(reportService, dispatcher), hub, authMiddleware)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins

	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging("/health", "/metrics"))
	router.Use(middleware.Prometheus)
	router.Use(middleware.CORS(corsCfg))

	// 6. HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	// stops the hub and the gauge scheduler
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// openStores returns Postgres-backed repositories, or in-memory ones when
// STORE=memory. db is nil in memory mode.
func openStores(ctx context.Context, cfg *config.Config) (users.Repository, moderation.Repository, *sqlx.DB) {
	if cfg.Store == "memory" {
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		usersRepo := users.NewMemoryRepository()
		return usersRepo, moderation.NewMemoryRepository(usersRepo), nil
	}

	db, err := database.NewPostgresDB(ctx, &database.PostgresConfig{URL: cfg.DatabaseURL})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	log.Info().Msg("Connected to PostgreSQL")

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	return users.NewPostgresRepository(db), moderation.NewPostgresRepository(db), db
}

// openLocker picks the entity lock backend. The Redis client is also
// returned so the health check can ping it.
func openLocker(ctx context.Context, cfg *config.Config) (lock.Locker, *redis.Client) {
	if cfg.LockBackend != "redis" {
		return lock.NewLocalLocker(cfg.LockWait), nil
	}

	client, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Connected to Redis, using distributed entity locks")

	return lock.NewRedisLocker(client, lock.RedisConfig{TTL: cfg.LockTTL, Wait: cfg.LockWait}), client
}

// healthCheck reports server health and the state of each backing store
func healthCheck(db *sqlx.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{}

		if db != nil {
			checks["postgres"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "degraded"
			log.Warn().Interface("checks", checks).Msg("Health check degraded")
		}

		utils.RespondWithJSON(w, status, map[string]interface{}{
			"status":    state,
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
			"checks":    checks,
		})
	}
}

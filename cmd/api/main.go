// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the lessons HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Initialize error tracking (optional).
//  4. Connect to PostgreSQL (pgxpool) and Redis.
//  5. Run database migrations (idempotent).
//  6. Build the identity token verifier.
//  7. Wire repositories, services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/taibuivan/lessons/internal/api"
	"github.com/taibuivan/lessons/internal/core/favorite"
	"github.com/taibuivan/lessons/internal/core/lesson"
	"github.com/taibuivan/lessons/internal/core/moderation"
	"github.com/taibuivan/lessons/internal/core/payment"
	"github.com/taibuivan/lessons/internal/platform/config"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/idempotency"
	"github.com/taibuivan/lessons/internal/platform/migration"
	pgstore "github.com/taibuivan/lessons/internal/platform/postgres"
	redisstore "github.com/taibuivan/lessons/internal/platform/redis"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/internal/users/account"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	location, err := cfg.Location()
	must(log, err, "load timezone")

	// ── 3. Error tracking ─────────────────────────────────────────────────
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     constants.AppName + "@" + constants.AppVersion,
		})
		must(log, err, "initialize sentry")
		defer sentry.Flush(2 * time.Second)
	}

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Long-lived context for background workers (rate limiter eviction, JWKS refresh).
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Identity verifier ──────────────────────────────────────────────
	var verifier *sec.IdentityVerifier
	if cfg.FirebasePublicKeyPath != "" {
		verifier, err = sec.NewPEMVerifier(cfg.FirebasePublicKeyPath, cfg.FirebaseProjectID)
	} else {
		verifier, err = sec.NewJWKSVerifier(appCtx, cfg.FirebaseJWKSURL, cfg.FirebaseProjectID, log)
	}
	must(log, err, "initialize identity verifier")
	defer verifier.Close()

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	replay := idempotency.NewRedisStore(rdb)

	accountRepository := account.NewPostgresRepository(pool)
	accountService := account.NewService(accountRepository, log)

	moderationService := moderation.NewService(
		moderation.NewPostgresRepository(pool),
		accountRepository,
		moderation.NewRedisStatsCache(rdb),
		moderation.Options{StatsTTL: cfg.StatsCacheTTL, Location: location},
		log,
	)

	lessonService := lesson.NewService(lesson.NewPostgresRepository(pool), moderationService, log)
	favoriteService := favorite.NewService(favorite.NewPostgresRepository(pool), log)

	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Account:    account.NewHandler(accountService),
		Lesson:     lesson.NewHandler(lessonService, replay),
		Favorite:   favorite.NewHandler(favoriteService, replay),
		Moderation: moderation.NewHandler(moderationService, replay),
	}

	if cfg.StripeSecretKey != "" {
		sessions := &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.StripeSecretKey}
		paymentService := payment.NewService(
			sessions,
			accountService,
			payment.DefaultOptions(cfg.ClientURL, cfg.StripeWebhookSecret),
			log,
		)
		handlers.Payment = payment.NewHandler(paymentService)
	} else {
		log.Warn("payments_disabled", slog.String("reason", "STRIPE_SECRET_KEY not set"))
	}

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	server := api.NewServer(appCtx, cfg, log, api.Auth{
		Verifier:    verifier,
		Provisioner: accountService,
	}, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

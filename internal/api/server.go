// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/taibuivan/lessons/internal/core/favorite"
	"github.com/taibuivan/lessons/internal/core/lesson"
	"github.com/taibuivan/lessons/internal/core/moderation"
	"github.com/taibuivan/lessons/internal/core/payment"
	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/config"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/middleware"
	"github.com/taibuivan/lessons/internal/platform/respond"
	"github.com/taibuivan/lessons/internal/platform/sec"
	"github.com/taibuivan/lessons/internal/users/account"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Account serves the session lookup, profiles and user administration.
	Account *account.Handler

	// Lesson serves the catalogue, authoring, likes and reports.
	Lesson *lesson.Handler

	// Favorite serves the favorite ledger.
	Favorite *favorite.Handler

	// Moderation serves the admin dashboard and report triage.
	Moderation *moderation.Handler

	// Payment is nil when Stripe is not configured.
	Payment *payment.Handler
}

// Auth bundles what the authentication middleware needs.
type Auth struct {
	Verifier    middleware.TokenVerifier
	Provisioner middleware.Provisioner
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, auth Auth, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.Debug(!cfg.IsProduction()))
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.RateLimit(context))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Authenticate(auth.Verifier, auth.Provisioner))

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	// # Infrastructure Endpoints
	// Unauthenticated health checks for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Get("/", func(writer http.ResponseWriter, request *http.Request) {
			respond.Message(writer, http.StatusOK, "Lessons API", map[string]string{"version": constants.AppVersion})
		})

		api.Mount("/auth", h.Account.AuthRoutes())
		api.Mount("/users", h.Account.Routes())
		api.Mount("/lessons", h.Lesson.Routes())
		api.Mount("/favorites", h.Favorite.Routes())

		if h.Payment != nil {
			api.Mount("/payments", h.Payment.Routes())
		}

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))
			h.Account.RegisterAdminRoutes(admin)
			h.Lesson.RegisterAdminRoutes(admin)
			h.Moderation.RegisterAdminRoutes(admin)
		})
	})

	// # Callbacks
	if h.Payment != nil {
		r.Mount("/webhooks/stripe", h.Payment.WebhookRoutes())
	}

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

// Package server wires the HTTP routes of the API and runs the listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-go/internal/config"
	"github.com/devconnector/devconnector-go/internal/crypto"
	"github.com/devconnector/devconnector-go/internal/handler"
	"github.com/devconnector/devconnector-go/internal/metrics"
	"github.com/devconnector/devconnector-go/internal/middleware"
	"github.com/devconnector/devconnector-go/internal/repository"
	"github.com/devconnector/devconnector-go/internal/service"
	"github.com/devconnector/devconnector-go/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the routes are built from.
type Deps struct {
	Store   *repository.Store
	Hasher  service.PasswordHasher
	Tokens  *crypto.TokenService
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

type Server struct {
	cfg    config.Config
	log    zerolog.Logger
	router chi.Router
}

// New builds the router. ctx bounds background work such as rate limiter
// cleanup and should live as long as the server.
func New(ctx context.Context, cfg config.Config, deps Deps) (*Server, error) {
	v, err := validation.New()
	if err != nil {
		return nil, fmt.Errorf("building validator: %w", err)
	}

	authService := service.NewAuthService(deps.Store.Users, deps.Hasher, deps.Tokens)
	authHandler := handler.NewAuthHandler(authService, v, deps.Metrics)

	profileService := service.NewProfileService(deps.Store.Profiles, deps.Store.Users)
	profileHandler := handler.NewProfileHandler(profileService, v)

	r := chi.NewRouter()
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Metrics(deps.Metrics))
	r.NotFound(handler.HandleNotFound)

	r.Get("/", handler.HandleRoot)
	r.Get("/health", handler.HandleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Post("/users", authHandler.HandleRegister)
			r.Post("/auth", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Guard(deps.Tokens, deps.Metrics))
			r.Get("/auth", authHandler.HandleMe)
			r.Get("/profile/me", profileHandler.HandleMe)
			r.Post("/profile", profileHandler.HandleUpsert)
		})
	})

	return &Server{cfg: cfg, log: deps.Logger, router: r}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", s.cfg.Port).Str("env", s.cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	s.log.Info().Msg("server stopped")
	return nil
}

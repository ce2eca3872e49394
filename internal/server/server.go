// Package server wires handlers, middleware and routes, and runs the HTTP
// server with graceful shutdown.
//
// ROUTES:
//
//	GET  /healthz                 liveness
//	POST /auth/sign-up            create account
//	POST /auth/sign-in            issue access token
//	POST /events/object-created   S3-compatible upload webhook (when enabled)
//	GET  /me                      current user             [auth]
//	POST /meals                   create meal              [auth]
//	GET  /meals?date=             day's processed meals    [auth]
//	GET  /meals/summary?date=     day's totals and targets [auth]
//	GET  /meals/{mealId}          one meal                 [auth]
//
// Middleware order: RequestID, RealIP, Logger, Recoverer. Recoverer sits
// inside Logger so a recovered panic is still logged with its 500.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brenowss/foodiary/internal/auth"
	"github.com/brenowss/foodiary/internal/handler"
	"github.com/brenowss/foodiary/internal/middleware"
)

type Config struct {
	Port            int
	ShutdownTimeout time.Duration
}

// Handlers are the route targets. Events may be nil to disable the webhook.
type Handlers struct {
	Auth   *handler.AuthHandler
	Meals  *handler.MealHandler
	Events *handler.EventHandler
}

type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	onClose []func() error
}

// New builds the router. Nothing listens until Start.
func New(cfg Config, handlers Handlers, tokens *auth.TokenService, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(handlers, tokens)
	return s
}

func (s *Server) setupRoutes(h Handlers, tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", h.Auth.HandleSignUp)
		r.Post("/sign-in", h.Auth.HandleSignIn)
	})

	if h.Events != nil {
		s.router.Post("/events/object-created", h.Events.HandleObjectCreated)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", h.Auth.HandleMe)

		r.Route("/meals", func(r chi.Router) {
			r.Post("/", h.Meals.HandleCreate)
			r.Get("/", h.Meals.HandleList)
			r.Get("/summary", h.Meals.HandleSummary)
			r.Get("/{mealId}", h.Meals.HandleGet)
		})
	})
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// OnClose registers cleanup that runs after the listener has shut down.
func (s *Server) OnClose(fn func() error) {
	s.onClose = append(s.onClose, fn)
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to ShutdownTimeout and runs the OnClose hooks in reverse order.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // text meals are analyzed inline
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) close() {
	for i := len(s.onClose) - 1; i >= 0; i-- {
		if err := s.onClose[i](); err != nil {
			s.logger.Error("cleanup failed", slog.String("error", err.Error()))
		}
	}
}

// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer, the composition root: it opens the
// database, builds the auth services, the business services and the
// handlers, and decides which middleware guards which route.
//
//	config → sqlite.DB → UserService / BlogService → UserHandler / BlogHandler
//	       → TokenService, PasswordService ↗
//
// Keeping this out of main.go means tests can build a complete server on
// ":memory:" and drive it through httptest.
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

	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/config"
	"github.com/sakif/bloglist/internal/handler"
	"github.com/sakif/bloglist/internal/middleware"
	sqliteRepo "github.com/sakif/bloglist/internal/repository/sqlite"
	"github.com/sakif/bloglist/internal/service"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. Start closes it after shutdown;
// callers that never Start (tests) call Close.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server from cfg. Every dependency is constructed here.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not mistaken for the
// driver package.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	// *sqliteRepo.DB implements both repository interfaces.
	userService := service.NewUserService(db, passwords, tokens, logger)
	blogService := service.NewBlogService(db, db, logger)

	s.setupRoutes(
		handler.NewBlogHandler(blogService, logger),
		handler.NewUserHandler(userService, logger),
		userService,
	)

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /api/blogs          → list blogs, owners populated
//	GET    /api/blogs/stats    → list-helper aggregates
//	POST   /api/blogs          → create blog          [UserExtractor]
//	DELETE /api/blogs/{id}     → delete own blog      [UserExtractor]
//	PUT    /api/blogs/{id}     → partial update
//	GET    /api/users          → list users, blogs populated
//	POST   /api/users          → register             [ValidateUser]
//	POST   /api/login          → issue token
//	*                          → 404 unknown endpoint
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts the real client IP from proxy headers
// 3. Logger: logs each request with timing info and the request ID
// 4. Recoverer: catches panics and returns 500 instead of crashing
// 5. TokenExtractor: copies the bearer token into the context, never rejects
func (s *Server) setupRoutes(blogs *handler.BlogHandler, users *handler.UserHandler, resolver middleware.UserResolver) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.TokenExtractor)

	// Set before the sub-routers are mounted so they inherit both.
	// A known path with the wrong method is still an unknown endpoint.
	unknown := handler.UnknownEndpoint(s.logger)
	s.router.NotFound(unknown)
	s.router.MethodNotAllowed(unknown)

	requireUser := middleware.UserExtractor(resolver, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogs.HandleList)
			r.Get("/stats", blogs.HandleStats)
			r.With(requireUser).Post("/", blogs.HandleCreate)
			r.With(requireUser).Delete("/{id}", blogs.HandleDelete)
			r.Put("/{id}", blogs.HandleUpdate)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.HandleList)
			r.With(middleware.ValidateUser(s.logger)).Post("/", users.HandleCreate)
		})

		r.Post("/login", users.HandleLogin)
	})
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start does this itself on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
			slog.String("database", s.config.DBPath),
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

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Package server wires the HTTP router, middleware and route definitions,
// and owns the process lifecycle (listen, graceful shutdown, closing the DB).
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → sqlite.DB ─┬→ BlogService → BlogHandler
//	                           └→ UserService → UserHandler
//	                TokenService/PasswordService ↗
//
// This is the composition root: all dependencies are assembled in New and
// setupRoutes, nowhere else.
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

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds the services and registers every route.
// The caller must call Start or Close.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("creating password service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, passwords)

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /api/blogs          → list blogs (owner projected)
//	GET    /api/blogs/stats    → aggregate statistics
//	GET    /api/blogs/{id}     → single blog
//	POST   /api/blogs          → create        [RequireUser]
//	PUT    /api/blogs/{id}     → partial update [OptionalAuth]
//	DELETE /api/blogs/{id}     → delete        [RequireUser]
//	GET    /api/users          → list users with their blogs
//	POST   /api/users          → register
//	POST   /api/login          → issue a token
//
// Anything else, including a known path with the wrong method, is a 404
// {"error":"unknown endpoint"}.
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.NotFound)

	users := s.db.Users()
	blogService := service.NewBlogService(s.db, users, s.logger)
	userService := service.NewUserService(users, s.db, tokens, passwords, s.logger)

	blogHandler := handler.NewBlogHandler(blogService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	requireUser := auth.RequireUser(tokens, userService, handler.ErrorWriter(s.logger))
	optionalAuth := auth.OptionalAuth(tokens, userService)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.HandleList)
			r.Get("/stats", blogHandler.HandleStats)
			r.Get("/{id}", blogHandler.HandleGet)
			r.With(requireUser).Post("/", blogHandler.HandleCreate)
			r.With(optionalAuth).Put("/{id}", blogHandler.HandleUpdate)
			r.With(requireUser).Delete("/{id}", blogHandler.HandleDelete)
		})

		r.Get("/users", userHandler.HandleList)
		r.Post("/users", userHandler.HandleRegister)
		r.Post("/login", userHandler.HandleLogin)
	})
}

// Handler exposes the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
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
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d/api/blogs", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and routes.
// It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config.Config and builds the logger, then:
//
//	Server.New() creates: sqlite.DB → TokenService, PasswordService
//	                      → Auth/User/Post/Comment/Like/Follow services
//	                      → handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/config"
	"github.com/sakif/blog-backend/internal/handler"
	"github.com/sakif/blog-backend/internal/middleware"
	sqliteRepo "github.com/sakif/blog-backend/internal/repository/sqlite"
	"github.com/sakif/blog-backend/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close it to flush pending writes and release the file lock.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every layer.
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("creating password service: %w", err)
	}

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
	s.setupRoutes(tokens, passwords)
	return s, nil
}

// Handler exposes the router so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown; tests that never
// Start call it directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/v1/auth/signup | login | logout
//	GET    /api/v1/auth/me                                   auth
//	GET    /api/v1/users/{userID}
//	PUT    /api/v1/users/{userID}                            auth
//	DELETE /api/v1/users/{userID}                            auth
//	GET    /api/v1/users/{userID}/follows                    optional auth
//	POST   /api/v1/users/{userID}/follows                    auth
//	DELETE /api/v1/users/{userID}/follows                    auth
//	GET    /api/v1/users/{userID}/followers | followings
//	GET    /api/v1/posts
//	POST   /api/v1/posts                                     auth
//	GET    /api/v1/posts/{postID}
//	PUT    /api/v1/posts/{postID}                            auth
//	DELETE /api/v1/posts/{postID}                            auth
//	GET    /api/v1/posts/{postID}/comments
//	POST   /api/v1/posts/{postID}/comments                   auth
//	PUT    /api/v1/posts/{postID}/comments/{commentID}       auth
//	DELETE /api/v1/posts/{postID}/comments/{commentID}       auth
//	POST   /api/v1/posts/{postID}/comments/{commentID}/replies  auth
//	GET    /api/v1/posts/{postID}/likes                      optional auth
//	POST   /api/v1/posts/{postID}/likes                      auth
//	DELETE /api/v1/posts/{postID}/likes                      auth
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger: logs each request with timing info
// 4. Recoverer: catches panics and returns 500 instead of crashing
// 5. CORS: answers preflight requests before they reach any route
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   s.config.CORS.AllowedMethods,
		AllowedHeaders:   s.config.CORS.AllowedHeaders,
		ExposedHeaders:   s.config.CORS.ExposedHeaders,
		AllowCredentials: s.config.CORS.AllowCredentials,
		MaxAge:           s.config.CORS.MaxAge,
	}))

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	// === Services ===
	// Each service receives the Store (s.db) as the repository.Store
	// interface; none of them knows it is SQLite.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, passwords, s.logger)
	postService := service.NewPostService(s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.logger)
	likeService := service.NewLikeService(s.db, s.logger)
	followService := service.NewFollowService(s.db, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, tokens.TTL(), s.config.CookieSecure, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	likeHandler := handler.NewLikeHandler(likeService, s.logger)
	followHandler := handler.NewFollowHandler(followService, s.logger)

	// A valid token is not enough: its subject must still be a user.
	validToken := auth.RequireAuth(tokens, handler.Unauthorized(s.logger))
	requireAuth := func(next http.Handler) http.Handler {
		return validToken(authHandler.ResolveUser(next))
	}
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(requireAuth).Get("/me", authHandler.HandleMe)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", userHandler.HandleGet)
			r.Get("/followers", followHandler.HandleFollowers)
			r.Get("/followings", followHandler.HandleFollowings)
			r.With(optionalAuth).Get("/follows", followHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/", userHandler.HandleUpdate)
				r.Delete("/", userHandler.HandleDelete)
				r.Post("/follows", followHandler.HandleFollow)
				r.Delete("/follows", followHandler.HandleUnfollow)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.HandleList)
			r.With(requireAuth).Post("/", postHandler.HandleCreate)

			r.Route("/{postID}", func(r chi.Router) {
				r.Get("/", postHandler.HandleGet)
				r.Get("/comments", commentHandler.HandleList)
				r.With(optionalAuth).Get("/likes", likeHandler.HandleGet)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Put("/", postHandler.HandleUpdate)
					r.Delete("/", postHandler.HandleDelete)

					r.Post("/comments", commentHandler.HandleCreate)
					r.Put("/comments/{commentID}", commentHandler.HandleUpdate)
					r.Delete("/comments/{commentID}", commentHandler.HandleDelete)
					r.Post("/comments/{commentID}/replies", commentHandler.HandleReply)

					r.Post("/likes", likeHandler.HandleAdd)
					r.Delete("/likes", likeHandler.HandleRemove)
				})
			})
		})
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

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
		if err != http.ErrServerClosed {
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

package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/donelist/apiserver/config"
	"github.com/donelist/apiserver/internal/auth"
	"github.com/donelist/apiserver/internal/db"
	"github.com/donelist/apiserver/internal/handlers"
	"github.com/donelist/apiserver/internal/mail"
	"github.com/donelist/apiserver/internal/services"
	"github.com/donelist/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mailer     mail.Mailer
}

// New constructs a Server with all dependencies wired. cfg must come from
// config.Load, which guarantees the required values are present.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mailer, err := mail.New(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	todoRepo := store.NewTodoRepository(dbConn)

	tokens := auth.NewTokenService(cfg.Auth)
	accounts := services.NewAccountService(userRepo, tokens, cfg.FrontendURL)
	sessions := services.NewSessionService(userRepo, tokens)
	todos := services.NewTodoService(todoRepo)

	authMiddleware := handlers.NewAuthMiddleware(tokens, accounts)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, sessions, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, accounts, mailer, authMiddleware, logger)
	})
	router.Route("/todos", func(r chi.Router) {
		handlers.TodoRouter(r, todos, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mailer:     mailer,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.mailer != nil {
		_ = s.mailer.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

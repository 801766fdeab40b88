package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionAuth mints and verifies session bearer tokens and checks the
// operator password.
type SessionAuth interface {
	VerifyPassword(password, hash string) bool
	GenerateToken(sessionID string) (string, error)
	ParseToken(token string) (string, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Auth is optional: with no SessionAuth configured the API is open and
	// sessions flow through the X-Session-ID header.
	auth         SessionAuth
	passwordHash string

	// Services
	assistant       driving.AssistantService
	indexer         driving.IndexService
	settingsService driving.SettingsService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check (optional)
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// OperatorPasswordHash gates session creation when set (bcrypt)
	OperatorPasswordHash string

	// AllowedOrigins configures CORS; empty disables cross-origin access
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server.
// auth, db and redisClient may be nil.
func NewServer(
	cfg Config,
	assistant driving.AssistantService,
	indexer driving.IndexService,
	settingsService driving.SettingsService,
	taskQueue driven.TaskQueue,
	auth SessionAuth,
	db Pinger,
	redisClient Pinger,
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		auth:            auth,
		passwordHash:    cfg.OperatorPasswordHash,
		assistant:       assistant,
		indexer:         indexer,
		settingsService: settingsService,
		taskQueue:       taskQueue,
		db:              db,
		redisClient:     redisClient,
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	sessionMiddleware := NewSessionMiddleware(s.auth)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Session creation (public; gated by operator password when configured)
	s.router.HandleFunc("POST /api/v1/session", s.handleOpenSession)

	// Assistant endpoints
	s.router.Handle("POST /api/v1/ask",
		sessionMiddleware.RequireSession(http.HandlerFunc(s.handleAsk)))
	s.router.Handle("POST /api/v1/query",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleQuery)))

	// Index endpoints
	s.router.Handle("POST /api/v1/index/rebuild",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleRebuildIndex)))
	s.router.Handle("GET /api/v1/index/status",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleIndexStatus)))

	// Task status polling
	s.router.Handle("GET /api/v1/tasks/{id}",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleGetTask)))

	// AI settings endpoints
	s.router.Handle("GET /api/v1/settings/ai",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleGetAISettings)))
	s.router.Handle("PUT /api/v1/settings/ai",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleUpdateAISettings)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route handler for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

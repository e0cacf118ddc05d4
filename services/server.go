package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/krshsl/mulakat/backend/assessment"
	"github.com/krshsl/mulakat/backend/repository"
	ws "github.com/krshsl/mulakat/backend/websocket"
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	sessions           repository.SessionStore
	accounts           repository.AccountStore
	rawDB              *gorm.DB
	assessmentService  *assessment.Service
	authService        *AuthService
	authEndpoints      *AuthEndpoints
	interviewEndpoints *InterviewEndpoints
	practiceEndpoints  *PracticeEndpoints
	wsHub              *ws.Hub
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

// SetStores sets the persistence layer. rawDB is nil for the in-memory store.
func (s *Server) SetStores(sessions repository.SessionStore, accounts repository.AccountStore, rawDB *gorm.DB) {
	s.sessions = sessions
	s.accounts = accounts
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.sessions == nil || s.accounts == nil {
		return errors.New("stores are not configured")
	}
	if s.config.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// Live results hub
	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	s.assessmentService = assessment.NewService(s.sessions, assessment.Options{
		UpdateTimeout: s.config.Store.UpdateTimeout,
		MaxRetries:    s.config.Store.MaxRetries,
		Publisher:     s.wsHub,
	})
	slog.Info("Assessment service initialized", "update_timeout", s.config.Store.UpdateTimeout, "max_retries", s.config.Store.MaxRetries)

	s.authService = NewAuthService(s.accounts, s.config.JWT.Secret, s.config.JWT.Expiry)
	s.authEndpoints = NewAuthEndpoints(s.authService)
	slog.Info("Authentication service initialized")

	var archive *AssessmentArchive
	if s.config.Archive.Dir != "" {
		archive = NewAssessmentArchive(s.config.Archive.Dir)
	}
	live := NewLiveFeed(s.wsHub, s.config.WebSocket.AllowedOrigins)
	s.interviewEndpoints = NewInterviewEndpoints(s.assessmentService, s.authService, live)
	s.practiceEndpoints = NewPracticeEndpoints(s.assessmentService, s.authService, archive)

	return nil
}

// Seed fills an empty store with demo data
func (s *Server) Seed(ctx context.Context) error {
	return NewDatabaseSeeder(s.accounts, s.authService, s.assessmentService).SeedDatabase(ctx)
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)
		r.Get("/health", s.healthHandler)

		s.authEndpoints.RegisterRoutes(r)
		s.interviewEndpoints.RegisterRoutes(r)
		s.practiceEndpoints.RegisterRoutes(r)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	s.wsHub.Stop()

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "memory"

	if s.rawDB != nil {
		if sqlDB, err := s.rawDB.DB(); err == nil {
			if err := sqlDB.PingContext(r.Context()); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"database": dbStatus,
	})

	slog.Debug("Health check", "status", status, "database", dbStatus)
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "API v1",
		"version": "1.0.0",
	})
}

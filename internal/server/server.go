// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jfelder/cuepoint/internal/api"
	"github.com/jfelder/cuepoint/internal/config"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/middleware"
	"github.com/jfelder/cuepoint/internal/session"
)

// Server represents the HTTP server
type Server struct {
	config         *config.Config
	db             *db.DB
	repos          *db.Repositories
	markerService  *marker.Service
	sessionManager *session.Manager
	router         *gin.Engine
	server         *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	markerService := marker.NewService(repos)
	sessionManager := session.NewManager(markerService, &cfg.Playback)

	return &Server{
		config:         cfg,
		db:             database,
		repos:          repos,
		markerService:  markerService,
		sessionManager: sessionManager,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Middleware stack
	s.router.Use(middleware.RequestLogger()) // Custom zerolog request logger
	s.router.Use(gin.Recovery())             // Panic recovery
	s.router.Use(cors.Default())             // CORS support (allows all origins)

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.sessionManager)
	api.SetupVideoRoutes(apiGroup, s.repos, s.markerService)
	api.SetupMarkerRoutes(apiGroup, s.markerService)
	api.SetupSessionRoutes(apiGroup, s.sessionManager, s.repos)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	// Start the idle-session reaper
	if err := s.sessionManager.Start(); err != nil {
		return fmt.Errorf("failed to start session manager: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	// Close all playback sessions first so their in-flight work is
	// cancelled before the database goes away.
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}

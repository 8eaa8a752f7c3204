package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jfelder/cuepoint/internal/config"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/server"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet, use the zerolog default
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	logger.Log.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting cuepoint")

	// Ensure the database directory exists
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Log.Fatal().Err(err).Str("dir", dir).Msg("Failed to create database directory")
		}
	}

	// Open the database and apply pending migrations
	database, err := db.NewWithOptions(cfg.Database.Path, db.Options{
		EnableWAL:      cfg.Database.EnableWAL,
		ConnectTimeout: cfg.Database.ConnectionTimeout,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open database")
	}

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to access database connection")
	}
	if err := db.RunMigrations(sqlDB, "file://migrations"); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	srv := server.New(cfg, database)

	// Run the server; ListenAndServe blocks until shutdown
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Wait for a termination signal or a server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errChan:
		logger.Log.Error().Err(err).Msg("Server stopped unexpectedly")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	if err := database.Close(); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to close database")
	}
}

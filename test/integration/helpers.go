//go:build integration
// +build integration

package integration

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jfelder/cuepoint/internal/api"
	"github.com/jfelder/cuepoint/internal/config"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
	"github.com/jfelder/cuepoint/internal/session"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory test database with migrations applied
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err, "Failed to create in-memory database")

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")

	// Resolve the migrations directory relative to this file so the tests
	// work regardless of working directory
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	// test/integration -> module root
	testDir := filepath.Dir(filename)
	rootDir := filepath.Dir(filepath.Dir(testDir))
	migrationsPath := "file://" + filepath.Join(rootDir, "migrations")

	err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err, "Failed to run migrations")

	repos := db.NewRepositories(database)

	cleanup := func() {
		database.Close()
	}

	return database, repos, cleanup
}

// setupTestServer wires the full API surface the way the real server does
func setupTestServer(t *testing.T) (*gin.Engine, *db.Repositories, *marker.Service, *session.Manager, func()) {
	t.Helper()

	database, repos, dbCleanup := setupTestDB(t)
	_ = database

	markerService := marker.NewService(repos)
	manager := session.NewManager(markerService, &config.PlaybackConfig{
		SeekStep:           1.0,
		SeekStepLarge:      5.0,
		EventQueueCapacity: 100,
		SessionIdleTimeout: 30 * time.Minute,
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	api.SetupVideoRoutes(apiGroup, repos, markerService)
	api.SetupMarkerRoutes(apiGroup, markerService)
	api.SetupSessionRoutes(apiGroup, manager, repos)

	cleanup := func() {
		manager.Stop()
		dbCleanup()
	}

	return router, repos, markerService, manager, cleanup
}

// createTestVideoInDB registers a video directly in the database
func createTestVideoInDB(t *testing.T, repos *db.Repositories, title, sourceURL string, duration float64) *models.Video {
	t.Helper()

	video := models.NewVideo(title, sourceURL)
	video.Duration = &duration

	err := repos.Videos.Create(context.Background(), video)
	require.NoError(t, err, "Failed to create test video in database")

	return video
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupVideoRouter creates a test Gin router with video routes
func setupVideoRouter(repos *db.Repositories, service *marker.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	apiGroup := router.Group("/api")
	SetupVideoRoutes(apiGroup, repos, service)
	return router
}

func registerTestVideo(t *testing.T, router *gin.Engine, sourceURL string) VideoResponse {
	t.Helper()

	duration := 120.0
	body, _ := json.Marshal(RegisterVideoRequest{
		Title:     "Test Video",
		SourceURL: sourceURL,
		Duration:  &duration,
	})

	req := httptest.NewRequest("POST", "/api/videos", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp VideoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRegisterVideo(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	service := marker.NewService(repos)
	router := setupVideoRouter(repos, service)

	t.Run("Valid request registers video", func(t *testing.T) {
		resp := registerTestVideo(t, router, "blob:video-a")
		assert.Equal(t, "Test Video", resp.Title)
		assert.Equal(t, "blob:video-a", resp.SourceURL)
		require.NotNil(t, resp.Duration)
		assert.Equal(t, 120.0, *resp.Duration)
	})

	t.Run("Missing source URL returns 400", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"title": "No Source"})

		req := httptest.NewRequest("POST", "/api/videos", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Duplicate source URL returns 409", func(t *testing.T) {
		registerTestVideo(t, router, "blob:video-dup")

		body, _ := json.Marshal(RegisterVideoRequest{SourceURL: "blob:video-dup"})
		req := httptest.NewRequest("POST", "/api/videos", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "duplicate_source", resp.Error)
	})
}

func TestGetAndListVideos(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	service := marker.NewService(repos)
	router := setupVideoRouter(repos, service)

	created := registerTestVideo(t, router, "blob:video-b")

	t.Run("Get by ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/"+created.ID, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp VideoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, created.ID, resp.ID)
	})

	t.Run("Unknown ID returns 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List includes registered video", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp VideoListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Videos)
	})
}

func TestVideoMarkers(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	service := marker.NewService(repos)
	router := setupVideoRouter(repos, service)

	created := registerTestVideo(t, router, "blob:video-c")
	createTestMarker(t, service, "blob:video-c", 3.0)
	createTestMarker(t, service, "blob:video-c", 1.0)

	t.Run("Markers listed in timestamp order", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/"+created.ID+"/markers", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp []*MarkerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, 1.0, resp[0].Timestamp)
		assert.Equal(t, 3.0, resp[1].Timestamp)
	})

	t.Run("Delete cascades to markers", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/videos/"+created.ID, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		remaining, err := service.ListByVideo(context.Background(), "blob:video-c")
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}

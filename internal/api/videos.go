package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
)

// RegisterVideoRequest represents a request to register a video source
type RegisterVideoRequest struct {
	Title     string   `json:"title"`
	SourceURL string   `json:"source_url" binding:"required"`
	Duration  *float64 `json:"duration,omitempty"`
}

// VideoResponse represents a video in API responses
type VideoResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url"`
	Duration  *float64  `json:"duration,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoListResponse represents the registered video library
type VideoListResponse struct {
	Videos []*VideoResponse `json:"videos"`
}

// VideoHandler handles video-related API requests
type VideoHandler struct {
	repos   *db.Repositories
	markers *marker.Service
}

// NewVideoHandler creates a new video handler instance
func NewVideoHandler(repos *db.Repositories, markers *marker.Service) *VideoHandler {
	return &VideoHandler{
		repos:   repos,
		markers: markers,
	}
}

// toVideoResponse converts a video model to API response format
func toVideoResponse(v *models.Video) *VideoResponse {
	return &VideoResponse{
		ID:        v.ID.String(),
		Title:     v.Title,
		SourceURL: v.SourceURL,
		Duration:  v.Duration,
		CreatedAt: v.CreatedAt,
	}
}

// RegisterVideo handles POST /api/videos
func (h *VideoHandler) RegisterVideo(c *gin.Context) {
	var req RegisterVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if req.Duration != nil && *req.Duration < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_duration",
			Message: "Duration cannot be negative",
		})
		return
	}

	video := models.NewVideo(req.Title, req.SourceURL)
	video.Duration = req.Duration

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repos.Videos.Create(ctx, video); err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_source",
				Message: "A video with this source URL is already registered",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("source_url", req.SourceURL).
			Msg("Failed to register video")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to register video",
		})
		return
	}

	logger.Log.Info().
		Str("video_id", video.ID.String()).
		Str("source_url", video.SourceURL).
		Msg("Video registered successfully")

	c.JSON(http.StatusCreated, toVideoResponse(video))
}

// ListVideos handles GET /api/videos
func (h *VideoHandler) ListVideos(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	videos, err := h.repos.Videos.List(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list videos")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video list",
		})
		return
	}

	responses := make([]*VideoResponse, len(videos))
	for i, v := range videos {
		responses[i] = toVideoResponse(v)
	}

	c.JSON(http.StatusOK, VideoListResponse{Videos: responses})
}

// GetVideo handles GET /api/videos/:id
func (h *VideoHandler) GetVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid video ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	video, err := h.repos.Videos.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Video not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to get video by ID")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video",
		})
		return
	}

	c.JSON(http.StatusOK, toVideoResponse(video))
}

// DeleteVideo handles DELETE /api/videos/:id. The video's markers are
// removed in the same transaction.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid video ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repos.Videos.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Video not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to delete video")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete video",
		})
		return
	}

	logger.Log.Info().
		Str("video_id", id.String()).
		Msg("Video deleted successfully")

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Video deleted successfully",
	})
}

// GetVideoMarkers handles GET /api/videos/:id/markers
func (h *VideoHandler) GetVideoMarkers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid video ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	video, err := h.repos.Videos.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Video not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to get video for marker listing")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video",
		})
		return
	}

	markers, err := h.markers.ListByVideo(ctx, video.SourceURL)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to list markers for video")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve markers",
		})
		return
	}

	responses := make([]*MarkerResponse, len(markers))
	for i, m := range markers {
		responses[i] = toMarkerResponse(m)
	}

	c.JSON(http.StatusOK, responses)
}

// SetupVideoRoutes registers video-related routes
func SetupVideoRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories, markers *marker.Service) {
	handler := NewVideoHandler(repos, markers)

	apiGroup.POST("/videos", handler.RegisterVideo)
	apiGroup.GET("/videos", handler.ListVideos)
	apiGroup.GET("/videos/:id", handler.GetVideo)
	apiGroup.DELETE("/videos/:id", handler.DeleteVideo)
	apiGroup.GET("/videos/:id/markers", handler.GetVideoMarkers)
}

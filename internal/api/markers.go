package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
	"gorm.io/datatypes"
)

// Request/Response DTOs

// CreateMarkerRequest represents a request to create a new marker
type CreateMarkerRequest struct {
	VideoID   string         `json:"video_id" binding:"required"`
	Timestamp *float64       `json:"timestamp" binding:"required"`
	Content   string         `json:"content"`
	Type      string         `json:"type"`
	Data      datatypes.JSON `json:"data,omitempty"`
}

// UpdateMarkerRequest represents a request to update marker fields (partial update)
type UpdateMarkerRequest struct {
	Timestamp *float64       `json:"timestamp,omitempty"`
	Content   *string        `json:"content,omitempty"`
	Type      *string        `json:"type,omitempty"`
	Data      datatypes.JSON `json:"data,omitempty"`
}

// MarkerResponse represents a marker in API responses
type MarkerResponse struct {
	ID        string         `json:"id"`
	VideoID   string         `json:"video_id"`
	Timestamp float64        `json:"timestamp"`
	Content   string         `json:"content"`
	Type      string         `json:"type"`
	Data      datatypes.JSON `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DeleteResponse represents a successful delete operation
type DeleteResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MarkerHandler handles marker-related API requests
type MarkerHandler struct {
	service *marker.Service
}

// NewMarkerHandler creates a new marker handler instance
func NewMarkerHandler(service *marker.Service) *MarkerHandler {
	return &MarkerHandler{service: service}
}

// toMarkerResponse converts a marker model to API response format
func toMarkerResponse(m *models.Marker) *MarkerResponse {
	return &MarkerResponse{
		ID:        m.ID.String(),
		VideoID:   m.VideoID,
		Timestamp: m.Timestamp,
		Content:   m.Content,
		Type:      m.Type,
		Data:      m.Data,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CreateMarker handles POST /api/markers
func (h *MarkerHandler) CreateMarker(c *gin.Context) {
	var req CreateMarkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.service.Create(ctx, marker.CreateInput{
		VideoID:   req.VideoID,
		Timestamp: req.Timestamp,
		Content:   req.Content,
		Type:      req.Type,
		Data:      req.Data,
	})
	if err != nil {
		if marker.IsValidation(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_marker",
				Message: err.Error(),
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("video_id", req.VideoID).
			Msg("Failed to create marker")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create marker",
		})
		return
	}

	logger.Log.Info().
		Str("marker_id", m.ID.String()).
		Str("video_id", m.VideoID).
		Float64("timestamp", m.Timestamp).
		Msg("Marker created successfully")

	c.JSON(http.StatusCreated, toMarkerResponse(m))
}

// ListMarkers handles GET /api/markers?videoId=...
func (h *MarkerHandler) ListMarkers(c *gin.Context) {
	videoID := c.Query("videoId")
	if videoID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_video_id",
			Message: "Query parameter videoId is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	markers, err := h.service.ListByVideo(ctx, videoID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", videoID).
			Msg("Failed to list markers")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve markers",
		})
		return
	}

	// The response body is the ordered array itself, not an envelope
	responses := make([]*MarkerResponse, len(markers))
	for i, m := range markers {
		responses[i] = toMarkerResponse(m)
	}

	c.JSON(http.StatusOK, responses)
}

// GetMarker handles GET /api/markers/:id
func (h *MarkerHandler) GetMarker(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid marker ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, marker.ErrMarkerNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Marker not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("marker_id", id.String()).
			Msg("Failed to get marker by ID")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve marker",
		})
		return
	}

	c.JSON(http.StatusOK, toMarkerResponse(m))
}

// UpdateMarker handles PUT /api/markers/:id
func (h *MarkerHandler) UpdateMarker(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid marker ID format",
		})
		return
	}

	var req UpdateMarkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.service.Update(ctx, id, marker.UpdateInput{
		Timestamp: req.Timestamp,
		Content:   req.Content,
		Type:      req.Type,
		Data:      req.Data,
	})
	if err != nil {
		if errors.Is(err, marker.ErrMarkerNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Marker not found",
			})
			return
		}

		if marker.IsValidation(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_marker",
				Message: err.Error(),
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("marker_id", id.String()).
			Msg("Failed to update marker")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to update marker",
		})
		return
	}

	logger.Log.Info().
		Str("marker_id", id.String()).
		Msg("Marker updated successfully")

	c.JSON(http.StatusOK, toMarkerResponse(m))
}

// DeleteMarker handles DELETE /api/markers/:id
func (h *MarkerHandler) DeleteMarker(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid marker ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, marker.ErrMarkerNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Marker not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("marker_id", id.String()).
			Msg("Failed to delete marker")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete marker",
		})
		return
	}

	logger.Log.Info().
		Str("marker_id", id.String()).
		Msg("Marker deleted successfully")

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Marker deleted successfully",
	})
}

// SetupMarkerRoutes registers marker-related routes
func SetupMarkerRoutes(apiGroup *gin.RouterGroup, service *marker.Service) {
	handler := NewMarkerHandler(service)

	apiGroup.POST("/markers", handler.CreateMarker)
	apiGroup.GET("/markers", handler.ListMarkers)
	apiGroup.GET("/markers/:id", handler.GetMarker)
	apiGroup.PUT("/markers/:id", handler.UpdateMarker)
	apiGroup.DELETE("/markers/:id", handler.DeleteMarker)
}

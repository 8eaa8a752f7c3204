// Package marker provides business logic for marker CRUD operations.
package marker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/models"
	"gorm.io/datatypes"
)

// Service handles business logic for marker operations
type Service struct {
	repos *db.Repositories
}

// NewService creates a new marker service instance
func NewService(repos *db.Repositories) *Service {
	return &Service{
		repos: repos,
	}
}

// CreateInput carries the fields for a new marker. Timestamp is a pointer
// so a missing field can be told apart from an explicit zero.
type CreateInput struct {
	VideoID   string
	Timestamp *float64
	Content   string
	Type      string
	Data      datatypes.JSON
}

// UpdateInput carries a partial marker update. Nil fields are left unchanged.
// Content is a pointer because editing it down to an empty string is allowed.
type UpdateInput struct {
	Timestamp *float64
	Content   *string
	Type      *string
	Data      datatypes.JSON
}

// Create validates the input, applies defaults for content and type, and
// persists a new marker. No defaults exist for video id or timestamp; a
// marker without an owning video cannot be created.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Marker, error) {
	if input.VideoID == "" {
		logger.Log.Warn().Msg("Marker creation failed: missing video id")
		return nil, fmt.Errorf("failed to create marker: %w", ErrMissingVideoID)
	}
	if input.Timestamp == nil {
		logger.Log.Warn().
			Str("video_id", input.VideoID).
			Msg("Marker creation failed: missing timestamp")
		return nil, fmt.Errorf("failed to create marker: %w", ErrMissingTimestamp)
	}
	if *input.Timestamp < 0 {
		logger.Log.Warn().
			Str("video_id", input.VideoID).
			Float64("timestamp", *input.Timestamp).
			Msg("Marker creation failed: negative timestamp")
		return nil, fmt.Errorf("failed to create marker: %w", ErrInvalidTimestamp)
	}

	content := input.Content
	if content == "" {
		content = models.DefaultMarkerContent
	}
	markerType := input.Type
	if markerType == "" {
		markerType = models.DefaultMarkerType
	}

	m := models.NewMarker(input.VideoID, *input.Timestamp, content, markerType)
	m.Data = input.Data

	if err := s.repos.Markers.Create(ctx, m); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", input.VideoID).
			Msg("Failed to create marker in database")
		return nil, fmt.Errorf("failed to create marker: %w", err)
	}

	logger.Log.Info().
		Str("marker_id", m.ID.String()).
		Str("video_id", m.VideoID).
		Float64("timestamp", m.Timestamp).
		Str("type", m.Type).
		Msg("Marker created successfully")

	return m, nil
}

// Get retrieves a marker by its ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Marker, error) {
	m, err := s.repos.Markers.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrMarkerNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("marker_id", id.String()).
			Msg("Failed to get marker by ID")
		return nil, fmt.Errorf("failed to get marker: %w", err)
	}
	return m, nil
}

// ListByVideo retrieves all markers for a video ordered by timestamp ascending.
// A video with no markers yields an empty slice, never an error.
func (s *Service) ListByVideo(ctx context.Context, videoID string) ([]*models.Marker, error) {
	markers, err := s.repos.Markers.ListByVideo(ctx, videoID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", videoID).
			Msg("Failed to list markers")
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}

	logger.Log.Debug().
		Str("video_id", videoID).
		Int("count", len(markers)).
		Msg("Listed markers")

	return markers, nil
}

// Update merges the provided fields into an existing marker and persists it.
// The full updated marker with a refreshed UpdatedAt is returned so callers
// can replace their local copy with the server-confirmed result.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Marker, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Timestamp != nil {
		if *input.Timestamp < 0 {
			logger.Log.Warn().
				Str("marker_id", id.String()).
				Float64("timestamp", *input.Timestamp).
				Msg("Marker update failed: negative timestamp")
			return nil, fmt.Errorf("failed to update marker: %w", ErrInvalidTimestamp)
		}
		existing.Timestamp = *input.Timestamp
	}
	if input.Content != nil {
		existing.Content = *input.Content
	}
	if input.Type != nil {
		if *input.Type == "" {
			return nil, fmt.Errorf("failed to update marker: %w", ErrInvalidType)
		}
		existing.Type = *input.Type
	}
	if input.Data != nil {
		existing.Data = input.Data
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repos.Markers.Update(ctx, existing); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrMarkerNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("marker_id", id.String()).
			Msg("Failed to update marker in database")
		return nil, fmt.Errorf("failed to update marker: %w", err)
	}

	logger.Log.Info().
		Str("marker_id", id.String()).
		Float64("timestamp", existing.Timestamp).
		Msg("Marker updated successfully")

	return existing, nil
}

// Delete removes a marker by its ID
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.Markers.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return ErrMarkerNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("marker_id", id.String()).
			Msg("Failed to delete marker")
		return fmt.Errorf("failed to delete marker: %w", err)
	}

	logger.Log.Info().
		Str("marker_id", id.String()).
		Msg("Marker deleted successfully")

	return nil
}

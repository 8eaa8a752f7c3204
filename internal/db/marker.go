// Package db provides database connection management and repository interfaces.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/models"
)

// MarkerRepository handles database operations for markers
type MarkerRepository struct {
	db *DB
}

// NewMarkerRepository creates a new marker repository
func NewMarkerRepository(db *DB) *MarkerRepository {
	return &MarkerRepository{db: db}
}

// Create inserts a new marker into the database
func (r *MarkerRepository) Create(ctx context.Context, marker *models.Marker) error {
	result := r.db.WithContext(ctx).Create(marker)
	if result.Error != nil {
		return fmt.Errorf("failed to create marker: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a marker by its UUID
func (r *MarkerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Marker, error) {
	var marker models.Marker
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&marker)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &marker, nil
}

// ListByVideo retrieves all markers for a video ordered by timestamp ascending.
// Ties are broken by creation time then id so the order is stable across reads.
func (r *MarkerRepository) ListByVideo(ctx context.Context, videoID string) ([]*models.Marker, error) {
	var markers []*models.Marker
	result := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("timestamp ASC, created_at ASC, id ASC").
		Find(&markers)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list markers: %w", MapGormError(result.Error))
	}
	return markers, nil
}

// CountByVideo returns the number of markers attached to a video
func (r *MarkerRepository) CountByVideo(ctx context.Context, videoID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Marker{}).Where("video_id = ?", videoID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count markers: %w", MapGormError(result.Error))
	}
	return count, nil
}

// Update updates an existing marker
// Note: Uses map-based updates to support setting fields to zero values
// (content may legitimately be edited down to an empty string)
func (r *MarkerRepository) Update(ctx context.Context, marker *models.Marker) error {
	updates := map[string]interface{}{
		"video_id":   marker.VideoID,
		"timestamp":  marker.Timestamp,
		"content":    marker.Content,
		"type":       marker.Type,
		"data":       marker.Data,
		"updated_at": marker.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Model(&models.Marker{}).Where("id = ?", marker.ID.String()).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update marker: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a marker by its UUID
func (r *MarkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Marker{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete marker: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByVideo deletes all markers attached to a video.
// Returns the number of markers removed; deleting zero markers is not an error.
func (r *MarkerRepository) DeleteByVideo(ctx context.Context, videoID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&models.Marker{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete markers: %w", MapGormError(result.Error))
	}
	return result.RowsAffected, nil
}

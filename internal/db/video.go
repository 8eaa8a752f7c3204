package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/models"
	"gorm.io/gorm"
)

// VideoRepository handles database operations for videos
type VideoRepository struct {
	db *DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a new video into the database
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	result := r.db.WithContext(ctx).Create(video)
	if result.Error != nil {
		return fmt.Errorf("failed to create video: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a video by its UUID
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&video)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &video, nil
}

// GetBySourceURL retrieves a video by its source URL (for duplicate checking)
func (r *VideoRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Video, error) {
	var video models.Video
	result := r.db.WithContext(ctx).Where("source_url = ?", sourceURL).First(&video)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &video, nil
}

// List retrieves all videos ordered by creation date (newest first)
func (r *VideoRepository) List(ctx context.Context) ([]*models.Video, error) {
	var videos []*models.Video
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list videos: %w", MapGormError(result.Error))
	}
	return videos, nil
}

// Update updates an existing video
func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", video.ID.String()).
		Select("title", "source_url", "duration").
		Updates(video)
	if result.Error != nil {
		return fmt.Errorf("failed to update video: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a video and all of its markers in a single transaction
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("video_id IN (SELECT source_url FROM videos WHERE id = ?)", id.String()).
			Delete(&models.Marker{}).Error; err != nil {
			return fmt.Errorf("failed to delete video markers: %w", MapGormError(err))
		}

		result := tx.Where("id = ?", id.String()).Delete(&models.Video{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete video: %w", MapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

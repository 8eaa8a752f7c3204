package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Marker represents a timestamped annotation attached to a video.
// Timestamp is in seconds from the start of the video.
type Marker struct {
	ID        uuid.UUID      `json:"id" gorm:"type:text;primaryKey;column:id"`
	VideoID   string         `json:"video_id" gorm:"type:text;not null;index;column:video_id" validate:"required"`
	Timestamp float64        `json:"timestamp" gorm:"type:real;not null;column:timestamp" validate:"gte=0"`
	Content   string         `json:"content" gorm:"type:text;not null;column:content"`
	Type      string         `json:"type" gorm:"type:text;not null;column:type" validate:"required"`
	Data      datatypes.JSON `json:"data,omitempty" gorm:"column:data"`
	CreatedAt time.Time      `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewMarker creates a new Marker with generated UUID and timestamps
func NewMarker(videoID string, timestamp float64, content, markerType string) *Marker {
	now := time.Now().UTC()
	return &Marker{
		ID:        uuid.New(),
		VideoID:   videoID,
		Timestamp: timestamp,
		Content:   content,
		Type:      markerType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Video represents a registered video that markers can be attached to.
// SourceURL is the upload's object URL and doubles as the marker set key,
// so one video registration maps to exactly one marker set.
type Video struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Title     string    `json:"title" gorm:"type:text;not null;column:title" validate:"required"`
	SourceURL string    `json:"source_url" gorm:"type:text;not null;uniqueIndex;column:source_url" validate:"required"`
	Duration  *float64  `json:"duration,omitempty" gorm:"type:real;column:duration"` // seconds, nil until metadata is known
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewVideo creates a new Video with generated UUID and timestamp
func NewVideo(title, sourceURL string) *Video {
	return &Video{
		ID:        uuid.New(),
		Title:     title,
		SourceURL: sourceURL,
		CreatedAt: time.Now().UTC(),
	}
}

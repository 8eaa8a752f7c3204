package session

import "github.com/jfelder/cuepoint/internal/models"

// Client event types (inbound from the player)
const (
	EventTimeUpdate   = "timeupdate"
	EventKeyDown      = "keydown"
	EventPlay         = "play"
	EventPause        = "pause"
	EventSeek         = "seek"
	EventSetDuration  = "set_duration"
	EventAddMarker    = "add_marker"
	EventUpdateMarker = "update_marker"
	EventDeleteMarker = "delete_marker"
	EventSelectMarker = "select_marker"
)

// Server event types (outbound to the player)
const (
	NotifyMarkerTriggered  = "marker_triggered"
	NotifySelectionChanged = "selection_changed"
	NotifyMarkersChanged   = "markers_changed"
	NotifyPlayback         = "playback"
	NotifySeek             = "seek"
	NotifyError            = "error"
)

// ClientEvent is a single event from the player. Type selects which of the
// optional fields are meaningful.
type ClientEvent struct {
	Type string `json:"type" binding:"required"`

	// timeupdate, seek, set_duration
	Time *float64 `json:"time,omitempty"`

	// keydown
	Key   string `json:"key,omitempty"`
	Shift bool   `json:"shift,omitempty"`

	// add_marker, update_marker, delete_marker, select_marker
	// An empty MarkerID on select_marker means deselect.
	MarkerID   string   `json:"marker_id,omitempty"`
	Timestamp  *float64 `json:"timestamp,omitempty"`
	Content    *string  `json:"content,omitempty"`
	MarkerType *string  `json:"marker_type,omitempty"`
}

// ServerEvent is a notification pushed to the player
type ServerEvent struct {
	Type      string           `json:"type"`
	Marker    *models.Marker   `json:"marker,omitempty"`
	Markers   []*models.Marker `json:"markers,omitempty"`
	IsPlaying *bool            `json:"is_playing,omitempty"`
	Time      *float64         `json:"time,omitempty"`
	Message   string           `json:"message,omitempty"`
}

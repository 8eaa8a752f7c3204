package timeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
	"github.com/jfelder/cuepoint/internal/playback"
)

// Synchronizer owns the in-memory marker set for one video and reconciles
// it against the live playback position. All mutations of the set flow
// through its methods; the view layer only reads through the accessors.
//
// Every operation follows a confirmed-only policy: nothing is applied to
// the in-memory set until the marker service has persisted it, so a failed
// request never leaves the client and the store diverged. This includes
// deletes, which the original behavior applied eagerly on request issuance.
//
// Not safe for concurrent use; a session's event loop is the only caller.
type Synchronizer struct {
	service    *marker.Service
	controller *playback.Controller

	videoID  string
	markers  []*models.Marker
	selected *models.Marker
}

// NewSynchronizer creates a synchronizer bound to a marker service and a
// playback controller
func NewSynchronizer(service *marker.Service, controller *playback.Controller) *Synchronizer {
	return &Synchronizer{
		service:    service,
		controller: controller,
	}
}

// LoadVideo replaces the working set with the given video's markers,
// clearing any selection. The set is re-sorted on load; order is not
// trusted from the caller.
func (s *Synchronizer) LoadVideo(videoID string, markers []*models.Marker) {
	s.videoID = videoID
	s.markers = make([]*models.Marker, len(markers))
	copy(s.markers, markers)
	sortMarkers(s.markers)
	s.selected = nil
}

// Markers returns the marker set in ascending-timestamp order.
// Callers must treat the returned slice as read-only.
func (s *Synchronizer) Markers() []*models.Marker {
	return s.markers
}

// Selected returns the currently selected marker, or nil
func (s *Synchronizer) Selected() *models.Marker {
	return s.selected
}

// VideoID returns the id of the loaded video, or "" before LoadVideo
func (s *Synchronizer) VideoID() string {
	return s.videoID
}

// OnTimeAdvance records a device time update and fires at most one marker:
// the first in order within the tolerance window that is not already
// selected. A fired marker becomes the selection and playback pauses.
//
// When nothing fires the prior selection persists - selection is sticky,
// not time-bound, so moving away from a selected marker does not clear it
// and seeking back to it does not re-fire. Deselecting and re-entering the
// window fires again.
//
// Returns true when a trigger fired.
func (s *Synchronizer) OnTimeAdvance(t float64) bool {
	s.controller.AdvanceTo(t)

	selectedID := uuid.Nil
	if s.selected != nil {
		selectedID = s.selected.ID
	}

	m := FindTriggered(s.markers, t, selectedID)
	if m == nil {
		return false
	}

	s.selected = m
	s.controller.Pause()

	logger.Log.Debug().
		Str("marker_id", m.ID.String()).
		Float64("timestamp", m.Timestamp).
		Float64("position", t).
		Msg("Marker triggered, pausing playback")

	return true
}

// AddMarker persists a new marker at the given position and, on
// confirmation, inserts it into the ordered set, selects it, and pauses
// playback. On persistence failure the in-memory set is untouched.
// Empty content or type fall back to the service defaults.
func (s *Synchronizer) AddMarker(ctx context.Context, atTime float64, content, markerType string) (*models.Marker, error) {
	if s.videoID == "" {
		return nil, ErrNoVideo
	}

	created, err := s.service.Create(ctx, marker.CreateInput{
		VideoID:   s.videoID,
		Timestamp: &atTime,
		Content:   content,
		Type:      markerType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add marker: %w", err)
	}

	s.markers = append(s.markers, created)
	sortMarkers(s.markers)
	s.selected = created
	s.controller.Pause()

	return created, nil
}

// UpdateMarker sends a partial update through the service and, on success,
// replaces the matching entry with the server-confirmed marker and re-sorts
// the set (an update may move the timestamp). On failure no partial local
// mutation is applied.
func (s *Synchronizer) UpdateMarker(ctx context.Context, id uuid.UUID, input marker.UpdateInput) (*models.Marker, error) {
	if s.indexOf(id) < 0 {
		return nil, ErrMarkerNotInSet
	}

	updated, err := s.service.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update marker: %w", err)
	}

	if i := s.indexOf(id); i >= 0 {
		s.markers[i] = updated
	}
	sortMarkers(s.markers)

	if s.selected != nil && s.selected.ID == id {
		s.selected = updated
	}

	return updated, nil
}

// DeleteMarker deletes a marker through the service and, on confirmation,
// removes it from the set. A deleted selection is cleared. Playback then
// repositions: to the first remaining marker's timestamp, or to 0 when the
// set is empty.
func (s *Synchronizer) DeleteMarker(ctx context.Context, id uuid.UUID) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrMarkerNotInSet
	}

	if err := s.service.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}

	s.markers = append(s.markers[:i], s.markers[i+1:]...)

	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
	}

	if len(s.markers) > 0 {
		s.controller.SeekTo(s.markers[0].Timestamp)
	} else {
		s.controller.SeekTo(0)
	}

	return nil
}

// SelectMarker sets the selection directly, bypassing the tolerance check.
// Passing uuid.Nil deselects. Selecting an id that is not in the set
// returns ErrMarkerNotInSet.
func (s *Synchronizer) SelectMarker(id uuid.UUID) error {
	if id == uuid.Nil {
		s.selected = nil
		return nil
	}

	i := s.indexOf(id)
	if i < 0 {
		return ErrMarkerNotInSet
	}

	s.selected = s.markers[i]
	return nil
}

// indexOf returns the position of the marker with the given id, or -1
func (s *Synchronizer) indexOf(id uuid.UUID) int {
	for i, m := range s.markers {
		if m.ID == id {
			return i
		}
	}
	return -1
}

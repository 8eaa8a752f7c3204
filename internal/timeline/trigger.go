// Package timeline reconciles a continuously advancing playback position
// against a sparse, mutable set of timestamped markers. It decides which
// marker is active at any instant, when playback must auto-pause, and keeps
// the marker set ordered across edits while playback continues.
package timeline

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/models"
)

// TriggerTolerance is the symmetric window in seconds around a marker's
// timestamp within which it counts as "reached" during playback. The
// comparison is strict: a position exactly TriggerTolerance away does not
// trigger.
const TriggerTolerance = 0.5

// FindTriggered scans an ordered marker set for the marker that should fire
// at playback position t. This is a pure function with no state - it takes
// the current selection so an already selected marker never re-triggers.
//
// The first match in ascending-timestamp order wins, which makes the
// tie-break deterministic: lowest timestamp first, then lowest index in the
// ordered set.
//
// Returns nil when no unselected marker lies within the tolerance window.
func FindTriggered(markers []*models.Marker, t float64, selectedID uuid.UUID) *models.Marker {
	for _, m := range markers {
		if m.ID == selectedID {
			continue
		}
		if math.Abs(m.Timestamp-t) < TriggerTolerance {
			return m
		}
	}
	return nil
}

// sortMarkers orders markers ascending by timestamp. The sort is stable so
// markers sharing a timestamp keep their relative insertion order.
func sortMarkers(markers []*models.Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Timestamp < markers[j].Timestamp
	})
}

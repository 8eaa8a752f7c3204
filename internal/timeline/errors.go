package timeline

import "errors"

var (
	// ErrMarkerNotInSet is returned when a selection or edit names a marker
	// id that is not part of the currently loaded marker set
	ErrMarkerNotInSet = errors.New("marker is not in the loaded set")

	// ErrNoVideo is returned when a marker is added before a video has been
	// loaded into the synchronizer
	ErrNoVideo = errors.New("no video loaded")
)

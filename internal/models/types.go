package models

// Marker type constants. The store accepts any string; these are the
// types the editor UI offers.
const (
	MarkerTypeText     = "text"
	MarkerTypeQuestion = "question"
	MarkerTypeFeedback = "feedback"
	MarkerTypePrompt   = "prompt"
)

// Defaults applied when a marker is created without content or type
const (
	DefaultMarkerContent = "New interaction point"
	DefaultMarkerType    = MarkerTypeText
)

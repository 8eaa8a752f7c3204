package playback

// Key identifiers as reported by browser keydown events
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeySpace      = " "
)

// HandleKey applies the keyboard contract to the controller:
// left/right arrows seek by the small step, shift+arrow by the large step,
// and space toggles play/pause. Seeks are clamped to the playable range.
// Returns false for keys the controller does not handle.
func (c *Controller) HandleKey(key string, shift bool) bool {
	step := c.seekStep
	if shift {
		step = c.seekStepLarge
	}

	switch key {
	case KeyArrowLeft:
		c.SeekBy(-step)
	case KeyArrowRight:
		c.SeekBy(step)
	case KeySpace:
		c.Toggle()
	default:
		return false
	}
	return true
}

// Package playback models the playback state of a single video: current
// position, play/pause flag, and duration. The playback device (the media
// element on the client) remains the source of truth for actual decoding;
// the controller mirrors its state and decides what the device should do
// next in response to user input.
package playback

// Default seek step sizes in seconds for keyboard navigation
const (
	DefaultSeekStep      = 1.0
	DefaultSeekStepLarge = 5.0
)

// Controller owns "current time" and "is playing" for one video.
// It is a pure state machine with no I/O and is not safe for concurrent
// use; each playback session drives exactly one controller from a single
// event loop.
type Controller struct {
	currentTime   float64
	duration      float64 // 0 while metadata has not loaded yet
	playing       bool
	seekStep      float64
	seekStepLarge float64
}

// New creates a controller with the given keyboard seek step sizes.
// Non-positive steps fall back to the defaults.
func New(seekStep, seekStepLarge float64) *Controller {
	if seekStep <= 0 {
		seekStep = DefaultSeekStep
	}
	if seekStepLarge <= 0 {
		seekStepLarge = DefaultSeekStepLarge
	}
	return &Controller{
		seekStep:      seekStep,
		seekStepLarge: seekStepLarge,
	}
}

// CurrentTime returns the current playback position in seconds
func (c *Controller) CurrentTime() float64 {
	return c.currentTime
}

// Duration returns the video duration in seconds, or 0 if unknown
func (c *Controller) Duration() float64 {
	return c.duration
}

// IsPlaying reports whether playback is running
func (c *Controller) IsPlaying() bool {
	return c.playing
}

// SetDuration records the video duration once the device reports metadata.
// The current position is re-clamped in case a seek landed past the end
// while the duration was still unknown.
func (c *Controller) SetDuration(duration float64) {
	if duration < 0 {
		duration = 0
	}
	c.duration = duration
	c.currentTime = c.clamp(c.currentTime)
}

// Play starts playback
func (c *Controller) Play() {
	c.playing = true
}

// Pause stops playback
func (c *Controller) Pause() {
	c.playing = false
}

// Toggle flips between playing and paused, returning the new state
func (c *Controller) Toggle() bool {
	c.playing = !c.playing
	return c.playing
}

// AdvanceTo records a device-fired time update. Ticks arrive at intervals
// determined by the media pipeline, not at a fixed frequency.
func (c *Controller) AdvanceTo(t float64) {
	c.currentTime = c.clamp(t)
}

// SeekTo moves the playback position to t, clamped to [0, duration]
func (c *Controller) SeekTo(t float64) {
	c.currentTime = c.clamp(t)
}

// SeekBy moves the playback position by delta seconds, clamped to [0, duration]
func (c *Controller) SeekBy(delta float64) {
	c.SeekTo(c.currentTime + delta)
}

// clamp restricts t to the playable range. While the duration is unknown
// only the lower bound applies.
func (c *Controller) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if c.duration > 0 && t > c.duration {
		return c.duration
	}
	return t
}

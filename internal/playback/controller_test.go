package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestController() *Controller {
	c := New(0, 0)
	c.SetDuration(100)
	return c
}

func TestNew_DefaultSteps(t *testing.T) {
	c := New(0, 0)

	assert.Equal(t, DefaultSeekStep, c.seekStep)
	assert.Equal(t, DefaultSeekStepLarge, c.seekStepLarge)
}

func TestPlayPauseToggle(t *testing.T) {
	c := newTestController()

	assert.False(t, c.IsPlaying())

	c.Play()
	assert.True(t, c.IsPlaying())

	c.Pause()
	assert.False(t, c.IsPlaying())

	assert.True(t, c.Toggle())
	assert.False(t, c.Toggle())
}

func TestSeekTo_Clamping(t *testing.T) {
	c := newTestController()

	c.SeekTo(50)
	assert.Equal(t, 50.0, c.CurrentTime())

	c.SeekTo(-3)
	assert.Equal(t, 0.0, c.CurrentTime())

	c.SeekTo(250)
	assert.Equal(t, 100.0, c.CurrentTime())
}

func TestSeekTo_UnknownDuration(t *testing.T) {
	c := New(0, 0)

	// No upper bound until metadata loads
	c.SeekTo(9999)
	assert.Equal(t, 9999.0, c.CurrentTime())

	// Re-clamped once the duration arrives
	c.SetDuration(120)
	assert.Equal(t, 120.0, c.CurrentTime())
}

func TestSeekBy(t *testing.T) {
	c := newTestController()
	c.SeekTo(10)

	c.SeekBy(5)
	assert.Equal(t, 15.0, c.CurrentTime())

	c.SeekBy(-20)
	assert.Equal(t, 0.0, c.CurrentTime())
}

func TestAdvanceTo(t *testing.T) {
	c := newTestController()

	c.AdvanceTo(42.75)
	assert.Equal(t, 42.75, c.CurrentTime())
}

func TestHandleKey_ArrowSeeks(t *testing.T) {
	c := newTestController()
	c.SeekTo(10)

	assert.True(t, c.HandleKey(KeyArrowRight, false))
	assert.Equal(t, 11.0, c.CurrentTime())

	assert.True(t, c.HandleKey(KeyArrowLeft, false))
	assert.Equal(t, 10.0, c.CurrentTime())

	assert.True(t, c.HandleKey(KeyArrowRight, true))
	assert.Equal(t, 15.0, c.CurrentTime())

	assert.True(t, c.HandleKey(KeyArrowLeft, true))
	assert.Equal(t, 10.0, c.CurrentTime())
}

func TestHandleKey_SeeksClampAtBounds(t *testing.T) {
	c := newTestController()

	c.SeekTo(0.5)
	c.HandleKey(KeyArrowLeft, false)
	assert.Equal(t, 0.0, c.CurrentTime())

	c.SeekTo(99.5)
	c.HandleKey(KeyArrowRight, true)
	assert.Equal(t, 100.0, c.CurrentTime())
}

func TestHandleKey_SpaceToggles(t *testing.T) {
	c := newTestController()

	assert.True(t, c.HandleKey(KeySpace, false))
	assert.True(t, c.IsPlaying())

	assert.True(t, c.HandleKey(KeySpace, false))
	assert.False(t, c.IsPlaying())
}

func TestHandleKey_Unhandled(t *testing.T) {
	c := newTestController()

	assert.False(t, c.HandleKey("Enter", false))
}

// Package session runs playback sessions. Each session owns one playback
// controller and one marker synchronizer and processes all of its events on
// a single goroutine, so the marker set never needs a lock: events from the
// player (time ticks, key presses, marker edits) are queued onto a channel
// and applied strictly in arrival order.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
	"github.com/jfelder/cuepoint/internal/playback"
	"github.com/jfelder/cuepoint/internal/timeline"
)

// Per-operation timeout for marker service calls made from the event loop
const requestTimeout = 5 * time.Second

// Session is a live playback session for one video. Events go in through
// Dispatch, notifications come out through Notifications. All state is
// owned by the internal event loop goroutine; the only cross-goroutine
// field is the last-activity timestamp used by the idle reaper.
type Session struct {
	ID      uuid.UUID
	VideoID string

	controller   *playback.Controller
	synchronizer *timeline.Synchronizer

	events        chan ClientEvent
	notifications chan ServerEvent

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	lastActive time.Time
}

// New creates a session for the given video with its marker set preloaded,
// and starts the event loop. The context bounds the session's lifetime:
// cancelling it (or calling Close) stops the loop and abandons any marker
// service call still in flight, so responses for a torn-down session are
// never applied.
func New(ctx context.Context, video *models.Video, markers []*models.Marker, service *marker.Service, seekStep, seekStepLarge float64, queueCapacity int) *Session {
	sessionCtx, cancel := context.WithCancel(ctx)

	controller := playback.New(seekStep, seekStepLarge)
	if video.Duration != nil {
		controller.SetDuration(*video.Duration)
	}

	synchronizer := timeline.NewSynchronizer(service, controller)
	synchronizer.LoadVideo(video.SourceURL, markers)

	s := &Session{
		ID:            uuid.New(),
		VideoID:       video.SourceURL,
		controller:    controller,
		synchronizer:  synchronizer,
		events:        make(chan ClientEvent, queueCapacity),
		notifications: make(chan ServerEvent, queueCapacity),
		ctx:           sessionCtx,
		cancel:        cancel,
		done:          make(chan struct{}),
		lastActive:    time.Now().UTC(),
	}

	go s.run()

	logger.Log.Info().
		Str("session_id", s.ID.String()).
		Str("video_id", s.VideoID).
		Int("markers", len(markers)).
		Msg("Playback session started")

	return s
}

// Dispatch queues an event for the session's loop. It never blocks: a full
// queue returns ErrQueueFull and the event is dropped (the player will send
// a fresh time update on the next tick anyway).
func (s *Session) Dispatch(ev ClientEvent) error {
	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
	}

	s.touch()

	select {
	case s.events <- ev:
		return nil
	default:
		logger.Log.Warn().
			Str("session_id", s.ID.String()).
			Str("event_type", ev.Type).
			Msg("Session event queue full, dropping event")
		return ErrQueueFull
	}
}

// Notifications returns the channel of server events for this session.
// The channel is closed when the session ends.
func (s *Session) Notifications() <-chan ServerEvent {
	return s.notifications
}

// Close stops the event loop and waits for it to finish
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

// LastActive reports when the session last received an event
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now().UTC()
	s.mu.Unlock()
}

// run is the single-threaded event loop. Because it is the only goroutine
// touching the controller and synchronizer, their state needs no locking
// and events are observed in a strict total order.
func (s *Session) run() {
	defer close(s.done)
	defer close(s.notifications)

	for {
		select {
		case <-s.ctx.Done():
			logger.Log.Info().
				Str("session_id", s.ID.String()).
				Msg("Playback session stopped")
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev ClientEvent) {
	switch ev.Type {
	case EventTimeUpdate:
		if ev.Time == nil {
			return
		}
		if s.synchronizer.OnTimeAdvance(*ev.Time) {
			s.notify(ServerEvent{
				Type:      NotifyMarkerTriggered,
				Marker:    s.synchronizer.Selected(),
				IsPlaying: boolPtr(false),
				Time:      floatPtr(s.controller.CurrentTime()),
			})
		}

	case EventKeyDown:
		wasPlaying := s.controller.IsPlaying()
		if !s.controller.HandleKey(ev.Key, ev.Shift) {
			return
		}
		if s.controller.IsPlaying() != wasPlaying {
			s.notify(ServerEvent{Type: NotifyPlayback, IsPlaying: boolPtr(s.controller.IsPlaying())})
		} else {
			s.notify(ServerEvent{Type: NotifySeek, Time: floatPtr(s.controller.CurrentTime())})
		}

	case EventPlay:
		s.controller.Play()
		s.notify(ServerEvent{Type: NotifyPlayback, IsPlaying: boolPtr(true)})

	case EventPause:
		s.controller.Pause()
		s.notify(ServerEvent{Type: NotifyPlayback, IsPlaying: boolPtr(false)})

	case EventSeek:
		if ev.Time == nil {
			return
		}
		s.controller.SeekTo(*ev.Time)
		s.notify(ServerEvent{Type: NotifySeek, Time: floatPtr(s.controller.CurrentTime())})

	case EventSetDuration:
		if ev.Time == nil {
			return
		}
		s.controller.SetDuration(*ev.Time)

	case EventAddMarker:
		s.handleAddMarker(ev)

	case EventUpdateMarker:
		s.handleUpdateMarker(ev)

	case EventDeleteMarker:
		s.handleDeleteMarker(ev)

	case EventSelectMarker:
		s.handleSelectMarker(ev)

	default:
		logger.Log.Warn().
			Str("session_id", s.ID.String()).
			Str("event_type", ev.Type).
			Msg("Unknown session event type")
	}
}

func (s *Session) handleAddMarker(ev ClientEvent) {
	atTime := s.controller.CurrentTime()
	if ev.Timestamp != nil {
		atTime = *ev.Timestamp
	}

	content := ""
	if ev.Content != nil {
		content = *ev.Content
	}
	markerType := ""
	if ev.MarkerType != nil {
		markerType = *ev.MarkerType
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()

	m, err := s.synchronizer.AddMarker(ctx, atTime, content, markerType)
	if err != nil {
		s.notifyError(err)
		return
	}

	s.notify(ServerEvent{Type: NotifyMarkersChanged, Markers: s.synchronizer.Markers()})
	s.notify(ServerEvent{Type: NotifySelectionChanged, Marker: m, IsPlaying: boolPtr(false)})
}

func (s *Session) handleUpdateMarker(ev ClientEvent) {
	id, err := uuid.Parse(ev.MarkerID)
	if err != nil {
		s.notifyError(err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()

	m, err := s.synchronizer.UpdateMarker(ctx, id, marker.UpdateInput{
		Timestamp: ev.Timestamp,
		Content:   ev.Content,
		Type:      ev.MarkerType,
	})
	if err != nil {
		s.notifyError(err)
		return
	}

	s.notify(ServerEvent{Type: NotifyMarkersChanged, Markers: s.synchronizer.Markers(), Marker: m})
}

func (s *Session) handleDeleteMarker(ev ClientEvent) {
	id, err := uuid.Parse(ev.MarkerID)
	if err != nil {
		s.notifyError(err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()

	if err := s.synchronizer.DeleteMarker(ctx, id); err != nil {
		s.notifyError(err)
		return
	}

	s.notify(ServerEvent{Type: NotifyMarkersChanged, Markers: s.synchronizer.Markers()})
	s.notify(ServerEvent{Type: NotifySelectionChanged, Marker: s.synchronizer.Selected()})
	s.notify(ServerEvent{Type: NotifySeek, Time: floatPtr(s.controller.CurrentTime())})
}

func (s *Session) handleSelectMarker(ev ClientEvent) {
	id := uuid.Nil
	if ev.MarkerID != "" {
		parsed, err := uuid.Parse(ev.MarkerID)
		if err != nil {
			s.notifyError(err)
			return
		}
		id = parsed
	}

	if err := s.synchronizer.SelectMarker(id); err != nil {
		s.notifyError(err)
		return
	}

	s.notify(ServerEvent{Type: NotifySelectionChanged, Marker: s.synchronizer.Selected()})
}

// notify pushes a server event without blocking the loop. A slow consumer
// loses notifications rather than stalling event processing.
func (s *Session) notify(ev ServerEvent) {
	select {
	case s.notifications <- ev:
	default:
		logger.Log.Warn().
			Str("session_id", s.ID.String()).
			Str("event_type", ev.Type).
			Msg("Session notification channel full, dropping notification")
	}
}

// notifyError surfaces a failed operation to the player. In-memory state is
// untouched by the failure; the user retries the originating action.
func (s *Session) notifyError(err error) {
	logger.Log.Warn().
		Err(err).
		Str("session_id", s.ID.String()).
		Msg("Session operation failed")
	s.notify(ServerEvent{Type: NotifyError, Message: err.Error()})
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

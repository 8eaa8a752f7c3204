package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jfelder/cuepoint/internal/config"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/marker"
	"github.com/jfelder/cuepoint/internal/models"
)

const cleanupInterval = time.Minute

// Manager tracks active playback sessions and reaps ones that have gone
// idle. Sessions live only in memory; restarting the server drops them.
type Manager struct {
	service *marker.Service
	cfg     *config.PlaybackConfig

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	stopped  bool

	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	cleanupDone   chan struct{}
}

// NewManager creates a session manager backed by the given marker service
func NewManager(service *marker.Service, cfg *config.PlaybackConfig) *Manager {
	return &Manager{
		service:     service,
		cfg:         cfg,
		sessions:    make(map[uuid.UUID]*Session),
		stopChan:    make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Start launches the background idle-session reaper
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}

	m.cleanupTicker = time.NewTicker(cleanupInterval)
	go m.runCleanupLoop()

	logger.Log.Info().
		Dur("idle_timeout", m.cfg.SessionIdleTimeout).
		Msg("Session manager started")

	return nil
}

// Stop shuts down the reaper and closes every active session
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopChan)
	if m.cleanupTicker != nil {
		<-m.cleanupDone
		m.cleanupTicker.Stop()
	}

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	logger.Log.Info().
		Int("closed_sessions", len(sessions)).
		Msg("Session manager stopped")
}

// Create fetches the video's marker set and starts a new playback session
func (m *Manager) Create(ctx context.Context, video *models.Video) (*Session, error) {
	m.mu.RLock()
	stopped := m.stopped
	m.mu.RUnlock()
	if stopped {
		return nil, ErrManagerStopped
	}

	markers, err := m.service.ListByVideo(ctx, video.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load markers for session: %w", err)
	}

	s := New(context.Background(), video, markers, m.service, m.cfg.SeekStep, m.cfg.SeekStepLarge, m.cfg.EventQueueCapacity)

	// Re-check under the write lock: Stop may have run since the snapshot
	// above, and a session inserted after Stop's sweep would leak.
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		s.Close()
		return nil, ErrManagerStopped
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// Get returns the session with the given id
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears down a single session
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	s.Close()
	return nil
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// runCleanupLoop periodically closes sessions idle past the configured timeout
func (m *Manager) runCleanupLoop() {
	defer close(m.cleanupDone)

	for {
		select {
		case <-m.stopChan:
			return
		case <-m.cleanupTicker.C:
			m.reapIdleSessions()
		}
	}
}

func (m *Manager) reapIdleSessions() {
	cutoff := time.Now().UTC().Add(-m.cfg.SessionIdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		logger.Log.Info().
			Str("session_id", s.ID.String()).
			Time("last_active", s.LastActive()).
			Msg("Closing idle playback session")
		s.Close()
	}
}

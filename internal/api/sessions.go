// Package api provides HTTP handlers for the REST API endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jfelder/cuepoint/internal/db"
	"github.com/jfelder/cuepoint/internal/logger"
	"github.com/jfelder/cuepoint/internal/session"
)

// upgrader promotes session socket requests to websocket connections.
// Origin checks are left to the CORS layer in front of the router.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CreateSessionRequest represents a request to open a playback session
type CreateSessionRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

// SessionResponse represents a playback session in API responses
type SessionResponse struct {
	ID      string `json:"id"`
	VideoID string `json:"video_id"`
}

// SessionHandler handles playback session API requests
type SessionHandler struct {
	manager *session.Manager
	repos   *db.Repositories

	mu      sync.Mutex
	sockets map[uuid.UUID]*sessionSocket
}

// NewSessionHandler creates a new session handler instance
func NewSessionHandler(manager *session.Manager, repos *db.Repositories) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		repos:   repos,
		sockets: make(map[uuid.UUID]*sessionSocket),
	}
}

// sessionSocket is the write side of a session's socket. A single writer
// goroutine per session consumes the notification channel; a reconnect
// swaps the connection in rather than starting a second consumer.
type sessionSocket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// attach makes conn the current connection and returns the one it
// replaced, if any.
func (sk *sessionSocket) attach(conn *websocket.Conn) *websocket.Conn {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	old := sk.conn
	sk.conn = conn
	return old
}

// detach clears conn if it is still the current connection. A stale
// detach after a reconnect swapped the connection out is a no-op.
func (sk *sessionSocket) detach(conn *websocket.Conn) {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	if sk.conn == conn {
		sk.conn = nil
	}
}

func (sk *sessionSocket) current() *websocket.Conn {
	sk.mu.Lock()
	defer sk.mu.Unlock()
	return sk.conn
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	videoID, err := uuid.Parse(req.VideoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_video_id",
			Message: "Invalid video ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	video, err := h.repos.Videos.GetByID(ctx, videoID)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Video not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("video_id", videoID.String()).
			Msg("Failed to get video for session")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video",
		})
		return
	}

	s, err := h.manager.Create(ctx, video)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", videoID.String()).
			Msg("Failed to create playback session")

		if errors.Is(err, session.ErrManagerStopped) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "shutting_down",
				Message: "Server is shutting down",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create playback session",
		})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		ID:      s.ID.String(),
		VideoID: req.VideoID,
	})
}

// CloseSession handles DELETE /api/sessions/:id
func (h *SessionHandler) CloseSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid session ID format",
		})
		return
	}

	if err := h.manager.Close(id); err != nil {
		if session.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Session not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("session_id", id.String()).
			Msg("Failed to close session")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "close_failed",
			Message: "Failed to close session",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Session closed successfully",
	})
}

// SessionSocket handles GET /api/sessions/:id/ws. Client events flow in
// over the socket and are dispatched to the session's event loop; server
// notifications flow back out on the same connection.
func (h *SessionHandler) SessionSocket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid session ID format",
		})
		return
	}

	s, ok := h.manager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Session not found",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("session_id", id.String()).
			Msg("Failed to upgrade session socket")
		return
	}

	logger.Log.Info().
		Str("session_id", id.String()).
		Str("remote_addr", conn.RemoteAddr().String()).
		Msg("Session socket connected")

	h.mu.Lock()
	sk, ok := h.sockets[s.ID]
	if !ok {
		sk = &sessionSocket{}
		h.sockets[s.ID] = sk
		go h.writeLoop(sk, s)
	}
	h.mu.Unlock()

	// A reconnect replaces the previous connection; closing it ends the
	// old read loop.
	if old := sk.attach(conn); old != nil {
		_ = old.Close()
	}

	h.readLoop(conn, sk, s)
}

// writeLoop forwards session notifications to the current connection
// until the notification channel closes. Notifications that arrive while
// no client is attached are dropped.
func (h *SessionHandler) writeLoop(sk *sessionSocket, s *session.Session) {
	for ev := range s.Notifications() {
		conn := sk.current()
		if conn == nil {
			continue
		}
		if err := conn.WriteJSON(ev); err != nil {
			logger.Log.Debug().
				Err(err).
				Str("session_id", s.ID.String()).
				Msg("Session socket write failed")
			sk.detach(conn)
			_ = conn.Close()
		}
	}

	// Session ended; tell whichever client is attached and stop tracking
	// the session.
	h.mu.Lock()
	delete(h.sockets, s.ID)
	h.mu.Unlock()

	if conn := sk.current(); conn != nil {
		sk.detach(conn)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	}
}

// readLoop decodes client events from the socket and dispatches them.
// The session itself outlives a dropped connection; the client may
// reconnect to the same session ID.
func (h *SessionHandler) readLoop(conn *websocket.Conn, sk *sessionSocket, s *session.Session) {
	defer func() {
		sk.detach(conn)
		conn.Close()
	}()

	for {
		var ev session.ClientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log.Warn().
					Err(err).
					Str("session_id", s.ID.String()).
					Msg("Session socket read failed")
			}
			return
		}

		if err := s.Dispatch(ev); err != nil {
			if errors.Is(err, session.ErrSessionClosed) {
				return
			}
			// Queue full: drop and keep reading, the next time update
			// will carry fresher state anyway.
			logger.Log.Warn().
				Err(err).
				Str("session_id", s.ID.String()).
				Str("event_type", ev.Type).
				Msg("Dropped session event")
		}
	}
}

// SetupSessionRoutes registers playback session routes
func SetupSessionRoutes(apiGroup *gin.RouterGroup, manager *session.Manager, repos *db.Repositories) {
	handler := NewSessionHandler(manager, repos)

	apiGroup.POST("/sessions", handler.CreateSession)
	apiGroup.DELETE("/sessions/:id", handler.CloseSession)
	apiGroup.GET("/sessions/:id/ws", handler.SessionSocket)
}

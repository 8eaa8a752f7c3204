package session

import "errors"

// Common session errors
var (
	ErrSessionClosed   = errors.New("session has been closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrQueueFull       = errors.New("session event queue is full")
	ErrManagerStopped  = errors.New("session manager has been stopped")
)

// IsNotFound checks if the error is a session not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

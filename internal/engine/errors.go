package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for identifier-resolution and invariant failures. Callers
// match with errors.Is; the wrapped message carries the offending id.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrSetNotFound          = errors.New("set not found")
	ErrInvalidGroupOp       = errors.New("invalid group operation")
	ErrInvalidSessionState  = errors.New("invalid session state")
	ErrInvalidExerciseOrder = errors.New("invalid exercise order")
)

// ActiveSessionError is returned by Start when a session is already active.
// It carries the existing session's id so the caller can offer to resume it.
type ActiveSessionError struct {
	ExistingID uuid.UUID
}

func (e *ActiveSessionError) Error() string {
	return fmt.Sprintf("an active session already exists: %s", e.ExistingID)
}

// SaveError wraps a session-store failure during initial persistence.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return "saving session: " + e.Err.Error() }
func (e *SaveError) Unwrap() error { return e.Err }

// UpdateError wraps a session-store failure while persisting a mutation.
type UpdateError struct {
	Err error
}

func (e *UpdateError) Error() string { return "updating session: " + e.Err.Error() }
func (e *UpdateError) Unwrap() error { return e.Err }

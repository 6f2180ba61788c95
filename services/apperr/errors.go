// Package apperr defines the error kinds surfaced by the course core.
// Controllers translate them into HTTP responses; services return them
// unchanged or wrapped with %w.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied: actor lacks permission (not owner, not admin, not paid).
	ErrAccessDenied = errors.New("access denied")

	// ErrCourseUnavailable: purchase/enrollment on a course that is not
	// catalog-visible.
	ErrCourseUnavailable = errors.New("course unavailable")

	// ErrInvalidTransition: lifecycle event not valid from the current state.
	ErrInvalidTransition = errors.New("invalid course transition")

	// ErrAlreadyCompleted: a terminal state was already reached. Callers
	// treat this as success.
	ErrAlreadyCompleted = errors.New("already completed")

	// ErrSessionExpired: the control session deadline passed and the caller
	// did not receive the auto-submitted attempt.
	ErrSessionExpired = errors.New("session expired")

	// ErrConflict: unique-constraint or optimistic-lock retry exhausted.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports malformed input: a bad reorder list, an answer to a
// foreign question, a field constraint violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// LessonLockedError blocks a control session start while the cooldown runs.
type LessonLockedError struct {
	SecondsRemaining int64
}

func (e *LessonLockedError) Error() string {
	return fmt.Sprintf("lesson locked for %d more seconds", e.SecondsRemaining)
}

// AsLessonLocked extracts a LessonLockedError from err, if present.
func AsLessonLocked(err error) (*LessonLockedError, bool) {
	var le *LessonLockedError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

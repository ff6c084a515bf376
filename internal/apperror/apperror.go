// Package apperror defines the application's error taxonomy. Services return
// these; handlers translate them into HTTP responses at the boundary.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("data unavailable")
)

// AppError carries a sentinel cause plus the human-readable messages shown
// on the rendered form. Validation rejections may accumulate several
// messages (one per empty field); other kinds carry exactly one.
type AppError struct {
	Err      error
	Messages []string
	Field    string // optional: the field that caused the rejection
}

func (e *AppError) Error() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:      ErrNotFound,
		Messages: []string{fmt.Sprintf("%s not found with id %d", resource, id)},
	}
}

// ValidationFailed reports a rejection tied to a single field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:      ErrValidation,
		Messages: []string{message},
		Field:    field,
	}
}

// ValidationMessages reports a rejection with an accumulated message list,
// e.g. all empty-field messages from the signup form at once.
func ValidationMessages(messages ...string) *AppError {
	return &AppError{
		Err:      ErrValidation,
		Messages: messages,
	}
}

// Conflict reports a storage-level uniqueness violation on the given field.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:      ErrConflict,
		Messages: []string{message},
		Field:    field,
	}
}

// Unavailable reports a storage failure. Handlers render a degraded response
// with HTTP 503 instead of failing the process.
func Unavailable(op string) *AppError {
	return &AppError{
		Err:      ErrUnavailable,
		Messages: []string{fmt.Sprintf("%s is currently unavailable", op)},
	}
}

// MessagesOf extracts the message list from err, or a generic fallback when
// err is not an AppError.
func MessagesOf(err error) []string {
	var appErr *AppError
	if errors.As(err, &appErr) && len(appErr.Messages) > 0 {
		return appErr.Messages
	}
	return []string{"an internal error occurred"}
}

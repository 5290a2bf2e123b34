// Package apperr defines the error taxonomy shared by the wallet core.
// Every error the services return belongs to exactly one category so
// handlers can map it to a response without string matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ValidationError: caller input violates a precondition. Not retryable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a ValidationError with a formatted reason.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError: an atomic transition failed because state changed
// concurrently. The caller should re-read current state before deciding
// whether to retry.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func Conflict(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// TransientStoreError: the store was unreachable or timed out. Retryable
// with backoff by the caller; the core never retries internally so a
// duplicate write can't hide behind a masked first attempt.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *TransientStoreError) Unwrap() error { return e.Err }

// Store wraps a store failure, preserving the underlying error.
func Store(op string, err error) error {
	return &TransientStoreError{Op: op, Err: err}
}

// AttachmentError: receipt upload or recording failed. Isolated from the
// settlement path and independently retryable.
type AttachmentError struct {
	Reason string
	Err    error
}

func (e *AttachmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attachment: %s: %v", e.Reason, e.Err)
	}
	return "attachment: " + e.Reason
}
func (e *AttachmentError) Unwrap() error { return e.Err }

func Attachment(reason string, err error) error {
	return &AttachmentError{Reason: reason, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsTransient reports whether err is a TransientStoreError (including a
// bare deadline expiry that escaped wrapping).
func IsTransient(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded)
}

// IsAttachment reports whether err is an AttachmentError.
func IsAttachment(err error) bool {
	var ae *AttachmentError
	return errors.As(err, &ae)
}

// HTTPStatus maps an error to the status code the dashboard expects:
// 422 for validation and attachment failures, 409 for lost races, 503
// when the store is unreachable, 500 for anything uncategorized.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsConflict(err):
		return http.StatusConflict
	case IsTransient(err):
		return http.StatusServiceUnavailable
	case IsAttachment(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API-facing error carrying a stable code and the HTTP status it maps to.
// Two Errors match under errors.Is when their codes are equal, so a Clone with a
// custom message still matches its sentinel.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.Code == t.Code
}

// Retryable reports whether repeating the operation may succeed: server-side failures
// and a scope that is busy with another run.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	return e.Status >= http.StatusInternalServerError || e.Code == ErrRunInProgress.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a code, status and message to an underlying error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Result computation.
	ErrConfiguration  = New("CONFIGURATION_ERROR", http.StatusUnprocessableEntity, "school configuration incomplete")
	ErrRunInProgress  = New("RUN_IN_PROGRESS", http.StatusConflict, "result computation already running for scope")
	ErrInvalidScore   = New("INVALID_SCORE", http.StatusUnprocessableEntity, "invalid assessment score")
	ErrRunInterrupted = New("RUN_INTERRUPTED", http.StatusServiceUnavailable, "result computation interrupted")
	ErrQueueFull      = New("QUEUE_FULL", http.StatusServiceUnavailable, "computation queue is full")

	// Result access.
	ErrNotReleased = New("RESULTS_NOT_RELEASED", http.StatusForbidden, "results not released")
)

// ErrCacheMiss signals that a cache key is absent.
var ErrCacheMiss = errors.New("cache miss")

// FromError normalises any error into an *Error, defaulting to ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a sentinel, replacing its message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

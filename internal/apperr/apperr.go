// Package apperr provides typed domain errors for the service. Domain and
// service code return these, and the HTTP layer maps them to status codes.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a requested resource has no data.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindBadRequest indicates a malformed request.
	KindBadRequest
	// KindUpstream indicates a failure talking to the open-data API.
	KindUpstream
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // operation that failed (optional)
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Internal wraps an unexpected error.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Message: err.Error(), Err: err}
}

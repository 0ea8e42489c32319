// Package apierr defines the error taxonomy used across the API: validation,
// not-found, conflict, upstream and internal failures. Handlers convert these
// at the boundary into the uniform JSON envelope and an HTTP status code.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUpstream
)

// Error is an API-facing error. Message is safe to surface to clients;
// Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	// UpstreamStatus holds the status code returned by an external service,
	// when the kind is KindUpstream and the status should pass through.
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a failure from an external service. status may be 0 when
// the upstream never answered; it then maps to 502.
func Upstream(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, UpstreamStatus: status, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// Status maps an error to the HTTP status code the envelope is written with.
func Status(err error) int {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}

	switch apiErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstream:
		if apiErr.UpstreamStatus >= 400 && apiErr.UpstreamStatus < 500 {
			return apiErr.UpstreamStatus
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err. Unexpected errors
// surface their text as-is; this API is internal and operator-facing, so the
// diagnostic value outweighs hiding details.
func PublicMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind != KindInternal {
		return apiErr.Message
	}
	return err.Error()
}

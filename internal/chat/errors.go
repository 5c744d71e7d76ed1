package chat

import (
	"errors"
	"net/http"
)

// Kind classifies a service failure so the transport layer can pick the
// right status code without inspecting error strings.
type Kind int

const (
	// KindUpstream covers store and media collaborator failures.
	KindUpstream Kind = iota
	// KindValidation covers rejected input (self-send, blank query).
	KindValidation
	// KindNotFound covers unknown users and messages.
	KindNotFound
	// KindForbidden covers a delete attempted by a non-sender.
	KindForbidden
)

// Error is the service-level error type. Origin keeps the collaborator
// error for diagnostics; it is only surfaced in debug mode.
type Error struct {
	Kind    Kind
	Message string
	Origin  error
}

func (e *Error) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Origin }

// Invalid reports a validation failure.
func Invalid(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports an unknown user or message.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Forbidden reports an operation the requester is not allowed to perform.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Upstream wraps a collaborator failure.
func Upstream(msg string, origin error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Origin: origin}
}

// KindOf returns the Kind of a service error; unknown errors are
// classified as upstream failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// HTTPStatus maps a service error to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Unauthenticated
	InvalidToken
	SessionMismatch
	UserNotFound
	Forbidden
	NotFound
	Conflict
	UpstreamFailure
	Unavailable
)

var kindNames = map[Kind]string{
	Internal:        "internal",
	InvalidInput:    "invalid_input",
	Unauthenticated: "unauthenticated",
	InvalidToken:    "invalid_token",
	SessionMismatch: "session_mismatch",
	UserNotFound:    "user_not_found",
	Forbidden:       "forbidden",
	NotFound:        "not_found",
	Conflict:        "conflict",
	UpstreamFailure: "upstream_failure",
	Unavailable:     "unavailable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is a classified error. Message is safe to show to API clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, apperr.E(apperr.Forbidden)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// E returns a bare kind matcher for errors.Is.
func E(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf returns the kind of err, or Internal if it is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Internal server error"
}

// Status maps an error to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case InvalidInput:
		return http.StatusBadRequest
	case Unauthenticated, InvalidToken, UserNotFound:
		return http.StatusUnauthorized
	case SessionMismatch, Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		// UpstreamFailure and Internal
		return http.StatusInternalServerError
	}
}

// Package apperror defines the client-visible error taxonomy shared by the
// services and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by the HTTP outcome it maps to.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error carrying one or more human-readable messages.
type Error struct {
	Kind     Kind
	Messages []string
	list     bool
	cause    error
}

func (e *Error) Error() string {
	msg := ""
	switch len(e.Messages) {
	case 0:
		msg = http.StatusText(e.Kind.Status())
	case 1:
		msg = e.Messages[0]
	default:
		msg = fmt.Sprintf("%s (and %d more)", e.Messages[0], len(e.Messages)-1)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// BadRequest reports invalid input or a violated uniqueness rule.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Messages: []string{fmt.Sprintf(format, args...)}}
}

// Invalid reports a list of validation failures.
func Invalid(messages []string) *Error {
	return &Error{Kind: KindBadRequest, Messages: messages, list: true}
}

// IsList reports whether the messages are rendered as a list even when there is one.
func (e *Error) IsList() bool {
	return e.list || len(e.Messages) > 1
}

// Unauthorized reports missing, invalid or mismatched credentials.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Messages: []string{fmt.Sprintf(format, args...)}}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{fmt.Sprintf(format, args...)}}
}

// Wrap marks an unexpected failure. The message is logged, never shown to clients.
func Wrap(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Messages: []string{fmt.Sprintf(format, args...)}, cause: err}
}

// As returns the *Error in err's chain, or nil.
func As(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

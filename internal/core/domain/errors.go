package domain

import "errors"

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can map it to a status code with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRevokedToken       = errors.New("refresh token revoked")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error is a domain failure carrying a client-safe message and its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Message is the text rendered to API clients.
func (e *Error) Message() string { return e.msg }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Validation builds an ErrValidation with a specific message.
func Validation(msg string) error { return newError(ErrValidation, msg) }

// NotFound builds an ErrNotFound with a specific message.
func NotFound(msg string) error { return newError(ErrNotFound, msg) }

// Conflict builds an ErrConflict with a specific message.
func Conflict(msg string) error { return newError(ErrConflict, msg) }

// Forbidden builds an ErrForbidden with a specific message.
func Forbidden(msg string) error { return newError(ErrForbidden, msg) }

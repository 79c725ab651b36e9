package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// Error is a categorized business error with a client-facing message.
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func BadRequestf(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}

func Forbiddenf(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

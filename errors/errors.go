// Package errors defines the error taxonomy of the membership engine and
// its mapping onto HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Taxonomy tags. Every error returned by the engine or the stores matches
// exactly one of these via errors.Is.
var (
	ErrValidation = stderrors.New("validation error")
	ErrNotFound   = stderrors.New("not found")
	ErrForbidden  = stderrors.New("forbidden")
	ErrStore      = stderrors.New("store failure")
)

// Error carries a client-facing message plus the taxonomy tag it belongs
// to. The message is what ends up in the HTTP response body.
type Error struct {
	Tag   error
	Msg   string
	Cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == e.Tag }

func (e *Error) Unwrap() error { return e.Cause }

func Validation(format string, args ...interface{}) error {
	return &Error{Tag: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Tag: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{Tag: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps an I/O or document-store failure.
func Store(err error, format string, args ...interface{}) error {
	return &Error{Tag: ErrStore, Msg: fmt.Sprintf(format, args...), Cause: err}
}

// PartialWrite marks a cross-store mutation whose first write was applied
// before the second one failed. There is no rollback: callers must treat
// the state as requiring reconciliation, not as a no-op.
type PartialWrite struct {
	Op  string
	Err error
}

func (e *PartialWrite) Error() string {
	return fmt.Sprintf("%s partially applied: %s", e.Op, e.Err)
}

func (e *PartialWrite) Is(target error) bool { return target == ErrStore }

func (e *PartialWrite) Unwrap() error { return e.Err }

// IsPartial reports whether err signals a partially applied cross-store
// mutation.
func IsPartial(err error) bool {
	var pw *PartialWrite
	return stderrors.As(err, &pw)
}

// HTTPStatus maps an error onto the response code of the request surface.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

package models

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type apiError struct {
	kind error
	msg  string
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.kind }

// The constructors below attach a caller-facing message to one of the
// taxonomy sentinels, so handlers can map errors.Is(...) to an HTTP status
// while keeping the message intact for the response envelope.

func ValidationError(msg string) error { return &apiError{kind: ErrValidation, msg: msg} }
func ForbiddenError(msg string) error  { return &apiError{kind: ErrForbidden, msg: msg} }
func NotFoundError(msg string) error   { return &apiError{kind: ErrNotFound, msg: msg} }
func ConflictError(msg string) error   { return &apiError{kind: ErrConflict, msg: msg} }

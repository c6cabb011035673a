// Package apperr tags domain errors with a category so transports can map
// them without knowing every sentinel.
package apperr

import "errors"

type Code string

const (
	CodeValidation Code = "validation_error"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeCapacity   Code = "capacity_exhausted"
)

// Error is a categorized domain error. Packages declare their sentinels as
// *Error values so errors.Is keeps working through %w wrapping.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(code Code, msg string) *Error { return &Error{Code: code, Message: msg} }

func Validation(msg string) *Error { return New(CodeValidation, msg) }
func NotFound(msg string) *Error   { return New(CodeNotFound, msg) }
func Conflict(msg string) *Error   { return New(CodeConflict, msg) }
func Capacity(msg string) *Error   { return New(CodeCapacity, msg) }

// CodeOf returns the category of the first *Error in err's chain, or "" for
// uncategorized (store/infrastructure) errors.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err carries the given category
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

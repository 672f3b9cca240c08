// Package domainerrors carries transport-neutral error codes from the
// pipeline to the edge, where httputil turns them into statuses.
package domainerrors

import (
	"context"
	"errors"
)

// Code names a failure class in pipeline terms.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeInvalidInput  Code = "invalid_input"
	CodeValidation    Code = "validation_failed"
	CodeUnprocessable Code = "unprocessable"
	CodeUnauthorized  Code = "unauthorized"
	CodeForbidden     Code = "forbidden"
	CodeNotFound      Code = "not_found"
	CodeTimeout       Code = "timeout"
	CodeUnavailable   Code = "unavailable"
	CodeInternal      Code = "internal_error"
)

// Error is a coded failure. Message is safe to show to API callers; Err
// holds the cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err,
// &Error{Code: CodeTimeout}) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. A code already present in err's chain wins
// over code.
func Wrap(err error, code Code, msg string) error {
	if e, ok := find(err); ok {
		code = e.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// FromContext returns a CodeTimeout error when err comes from an expired
// or cancelled context, and nil otherwise. Coded errors return nil so
// callers keep them as they are.
func FromContext(err error, msg string) error {
	if _, ok := find(err); ok {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Code: CodeTimeout, Message: msg, Err: err}
	}
	return nil
}

func HasCode(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return CodeInternal
}

func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

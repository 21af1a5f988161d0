// Package domainerrors carries coded errors across service boundaries.
//
// Services return *Error values (optionally wrapping an infrastructure cause)
// so transports can map them to status codes without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeForbidden          Code = "forbidden"
	CodeUnauthorized       Code = "unauthorized"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Attendance codes
	CodeAlreadyClockedIn   Code = "already_clocked_in"
	CodeAlreadyClockedOut  Code = "already_clocked_out"
	CodeNotClockedIn       Code = "not_clocked_in"
	CodeFaceNotRecognized  Code = "face_not_recognized"
	CodeOutsideClockWindow Code = "OUTSIDE_CLOCK_WINDOW"
	CodeStoreClosedLogin   Code = "STORE_CLOSED_LOGIN"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
// A nil err yields nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost domain error in the chain,
// or CodeInternal when none is present.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// Package apperr defines the coded error taxonomy shared by every core package.
//
// Every failure that leaves the core carries exactly one Code so callers can
// branch on the kind of failure with errors.Is or HasCode instead of matching
// message text.
package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Code identifies the kind of failure.
type Code string

const (
	NotFound       Code = "NOT_FOUND"
	NotADirectory  Code = "NOT_A_DIRECTORY"
	NotAFile       Code = "NOT_A_FILE"
	AlreadyExists  Code = "ALREADY_EXISTS"
	IOError        Code = "IO_ERROR"
	ParseError     Code = "PARSE_ERROR"
	InvalidName    Code = "INVALID_NAME"
	CorruptArchive Code = "CORRUPT_ARCHIVE"
	LaunchFailed   Code = "LAUNCH_FAILED"
)

// Error is a failure with a stable code, a human-readable message and an
// optional underlying cause.
type Error struct {
	Code    Code
	Message string
	Path    string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error with the same code. A corrupt archive is also a parse
// error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	return e.Code == CorruptArchive && t.Code == ParseError
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. Returns nil if err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf wraps err with a code and formatted message. Returns nil if err is nil.
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// WithPath records the filesystem path the error concerns.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// Sentinel returns a bare error carrying only a code, for use with errors.Is.
func Sentinel(code Code) error {
	return &Error{Code: code}
}

// HasCode reports whether err (or anything it wraps) carries code.
func HasCode(err error, code Code) bool {
	return errors.Is(err, Sentinel(code))
}

// CodeOf returns the code of the outermost *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FromOS classifies an error returned by the os package. Errors that already
// carry a code are returned unchanged.
func FromOS(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}

	var code Code
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = NotFound
	case errors.Is(err, fs.ErrExist):
		code = AlreadyExists
	case errors.Is(err, syscall.ENOTDIR):
		code = NotADirectory
	default:
		code = IOError
	}
	return Wrapf(err, code, "%s %s", op, path).WithPath(path)
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a structured failure for a single file.
//
// Error() returns Message unchanged so parser diagnostics reach the report
// exactly as the parser produced them.
type Error struct {
	Code    Code
	Message string
	Path    string
	// Offset is the byte offset of a parse error, -1 when unknown.
	Offset int64

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// WithCause sets the wrapped root cause.
func (e *Error) WithCause(cause error) *Error {
	if e == nil {
		return nil
	}
	e.cause = cause
	return e
}

// WithPath records the file the error belongs to.
func (e *Error) WithPath(path string) *Error {
	if e == nil {
		return nil
	}
	e.Path = path
	return e
}

// Detail renders the code name, path, message and known offset for debug
// logging.
func (e *Error) Detail() string {
	if e == nil {
		return "<nil>"
	}
	detail := fmt.Sprintf("[%s] %s", e.Code.Name(), e.Message)
	if e.Path != "" {
		detail = fmt.Sprintf("[%s] %s: %s", e.Code.Name(), e.Path, e.Message)
	}
	if e.Offset >= 0 {
		detail += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	return detail
}

// CodeOf extracts the Code from err, Internal for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

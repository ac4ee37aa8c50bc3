package errors

import "fmt"

// New constructs a new structured error.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Offset:  -1,
	}
}

// Newf constructs a formatted structured error.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap constructs a structured error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return New(code, message).WithCause(cause)
}

func ErrNotFound(path string) *Error {
	return New(NotFound, "file not found").WithPath(path)
}

// ErrParse keeps the parser's message verbatim.
func ErrParse(message string, offset int64) *Error {
	e := New(ParseError, message)
	e.Offset = offset
	return e
}

func ErrIO(op, path string, cause error) *Error {
	if cause == nil {
		return Newf(IOError, "%s failed", op).WithPath(path)
	}
	return Wrap(IOError, fmt.Sprintf("%s failed: %v", op, cause), cause).WithPath(path)
}

func ErrInternal(message string, cause error) *Error {
	if cause == nil {
		return New(Internal, message)
	}
	return Wrap(Internal, message, cause)
}

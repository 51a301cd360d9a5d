// Package errors provides coded errors for trafficmap.
//
// Every error that crosses a package boundary carries a [Code]. The CLI
// prints it, the HTTP service maps it to a status and tests match on it
// without parsing messages.
//
// # Codes
//
//   - INVALID_*: the document, configuration or a path is unusable
//   - FILE_NOT_FOUND: the input document does not exist
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: a basemap tile server failed
//   - INTERNAL_ERROR, UNSUPPORTED: bugs and unimplemented options
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "image width must be positive, got %d", w)
//	if errors.IsClientError(err) {
//	    // bad input, not worth retrying
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, err, "fetch tile %s", tile)
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code is a machine-readable error category.
type Code string

// Error codes.
const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Client reports whether c describes bad input rather than a failure of the
// environment or a bug.
func (c Code) Client() bool {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidGeometry, ErrCodeInvalidConfig, ErrCodeInvalidPath:
		return true
	}
	return false
}

// Upstream reports whether c describes a tile server failure.
func (c Code) Upstream() bool {
	switch c {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited:
		return true
	}
	return false
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coder is implemented by error types that carry a fixed code.
type coder interface {
	Code() Code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// the empty code.
func GetCode(err error) Code {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
	}
	return ""
}

// Is reports whether err's code is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message of the outermost *Error without its code
// and cause, or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether err was caused by bad input.
func IsClientError(err error) bool { return GetCode(err).Client() }

// IsUpstreamError reports whether err was caused by a tile server.
func IsUpstreamError(err error) bool { return GetCode(err).Upstream() }

// RateLimitedError is a 429 from a tile server.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 if the server gave no hint
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns ErrCodeRateLimited.
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }

// Wait returns the server's Retry-After hint as a duration.
func (e *RateLimitedError) Wait() time.Duration {
	return time.Duration(e.RetryAfter) * time.Second
}

// Package errors provides structured error types for rigwall.
//
// Errors carry a machine-readable [Code] so that the CLI can print a friendly
// message and the HTTP server can pick a status code without string matching.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - NOT_FOUND*: unknown vehicle, image or session
//   - TIMEOUT, RATE_LIMITED: degraded operation
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFilter, "unknown category %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidFilter) {
//	    // reject request
//	}
//
//	err = errors.Wrap(errors.ErrCodeInternal, cause, "render %s", format)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFilter     Code = "INVALID_FILTER"
	ErrCodeInvalidSort       Code = "INVALID_SORT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidViewport   Code = "INVALID_VIEWPORT"
	ErrCodeInvalidSubmission Code = "INVALID_SUBMISSION"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeVehicleNotFound Code = "VEHICLE_NOT_FOUND"
	ErrCodeImageNotFound   Code = "IMAGE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Degraded operation
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeNetwork     Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a [Code], a message safe to show users, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an *Error whose Unwrap yields cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// find returns the first *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage drops the code prefix and cause from coded errors. Other
// errors are returned verbatim.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidFilter:     http.StatusBadRequest,
	ErrCodeInvalidSort:       http.StatusBadRequest,
	ErrCodeInvalidFormat:     http.StatusBadRequest,
	ErrCodeInvalidViewport:   http.StatusBadRequest,
	ErrCodeInvalidPath:       http.StatusBadRequest,
	ErrCodeInvalidSubmission: http.StatusUnprocessableEntity,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeVehicleNotFound:   http.StatusNotFound,
	ErrCodeImageNotFound:     http.StatusNotFound,
	ErrCodeSessionNotFound:   http.StatusNotFound,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
	ErrCodeTimeout:           http.StatusGatewayTimeout,
	ErrCodeUnsupported:       http.StatusNotImplemented,
}

// HTTPStatus maps an error to the status the server responds with. Uncoded
// errors map to 500.
func HTTPStatus(err error) int {
	if s, ok := httpStatus[GetCode(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// RateLimitedError is wrapped by RATE_LIMITED errors so the server can set
// Retry-After.
type RateLimitedError struct {
	RetryAfter int // seconds
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

// Code always returns [ErrCodeRateLimited].
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }

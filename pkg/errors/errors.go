package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeInput       ErrorType = "input"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeRejected    ErrorType = "rejected"
	ErrorTypeSchema      ErrorType = "schema"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Category groups error types into the three classes a run can fail with
type Category string

const (
	CategoryConfiguration   Category = "configuration"
	CategoryTransport       Category = "transport"
	CategoryRemoteRejection Category = "remote_rejection"
)

// Error represents a typed failure with optional HTTP status and cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Category folds the error type into its failure class
func (e *Error) Category() Category {
	switch e.Type {
	case ErrorTypeConfig, ErrorTypeInput:
		return CategoryConfiguration
	case ErrorTypeNetwork:
		return CategoryTransport
	default:
		return CategoryRemoteRejection
	}
}

// New creates a typed error
func New(t ErrorType, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, err error, msg string) *Error {
	return &Error{Type: t, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// CategoryOf returns the failure class of err. Untyped errors count as transport
// failures since they come from below the API layer.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category()
	}
	return CategoryTransport
}

// IsRemoteRejection reports whether the service answered but refused the call
func IsRemoteRejection(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Category() == CategoryRemoteRejection
}

// TypeForStatus maps an HTTP status code to an error type
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	case statusCode >= 400:
		return ErrorTypeRejected
	default:
		return ErrorTypeUnknown
	}
}

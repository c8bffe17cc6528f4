// Package errors defines the categorised error type shared by the UI's
// services, backend client and HTTP handlers.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "not_found"
	ErrCodeConflict     ErrorCode = "conflict"
	ErrCodeValidation   ErrorCode = "validation"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	ErrCodeForbidden    ErrorCode = "forbidden"
	// ErrCodeUpstream means the interview backend failed or answered with something unusable.
	ErrCodeUpstream ErrorCode = "upstream"
	ErrCodeInternal ErrorCode = "internal"
	ErrCodeTimeout  ErrorCode = "timeout"
)

// AppError is an error with a category, a user-facing message and, for
// validation failures, per-field messages keyed by form field name.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound creates a not-found error.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// Validation creates a validation error with no field attribution.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ValidationField attributes a validation message to one form field.
func ValidationField(field, message string) *AppError {
	return ValidationFields(message, map[string]string{field: message})
}

// ValidationFields creates a validation error carrying a copy of fields.
func ValidationFields(message string, fields map[string]string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Fields: maps.Clone(fields)}
}

// Wrap wraps err with a category; a nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// CodeForStatus maps a backend HTTP status to an ErrorCode.
func CodeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusConflict:
		return ErrCodeConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrCodeValidation
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status >= http.StatusInternalServerError:
		return ErrCodeUpstream
	default:
		return ErrCodeInternal
	}
}

// StatusFor maps an ErrorCode to the status the UI answers with.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUpstream:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func as(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func isCode(err error, code ErrorCode) bool {
	appErr, ok := as(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether err is categorised as not found.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsValidation reports whether err is categorised as a validation failure.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsUnauthorized reports whether err carries a rejected-credentials category,
// including backend 401 responses.
func IsUnauthorized(err error) bool { return isCode(err, ErrCodeUnauthorized) }

// IsForbidden reports whether err is categorised as forbidden.
func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	if appErr, ok := as(err); ok {
		return appErr.Code
	}
	return ""
}

// FieldMessages returns the per-field messages carried by err, or nil.
func FieldMessages(err error) map[string]string {
	if appErr, ok := as(err); ok {
		return appErr.Fields
	}
	return nil
}

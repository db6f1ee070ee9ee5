package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates a client-side pre-submission check failed.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeTransport indicates the backend could not be reached or answered garbage.
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeCredential indicates the backend rejected the submitted credentials or registration data.
	ErrCodeCredential ErrorCode = "credential"
	// ErrCodeConflict indicates the request is not acceptable in the current session state.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeStale indicates a resolution arrived after a newer transition superseded it.
	ErrCodeStale ErrorCode = "stale"
	// ErrCodeInternal indicates a local failure (storage, encoding).
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
// Message is always safe to show to the user; Cause carries the technical detail.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Transport creates a new Transport error wrapping the network failure.
func Transport(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeTransport, Message: message, Cause: cause}
}

// Credential creates a new Credential error carrying the backend's message.
func Credential(message string) *AppError {
	return &AppError{Code: ErrCodeCredential, Message: message}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Stale creates a new Stale error.
func Stale(message string) *AppError {
	return &AppError{Code: ErrCodeStale, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return IsCode(err, ErrCodeValidation) }

// IsTransport checks if an error is a Transport error.
func IsTransport(err error) bool { return IsCode(err, ErrCodeTransport) }

// IsCredential checks if an error is a Credential error.
func IsCredential(err error) bool { return IsCode(err, ErrCodeCredential) }

// IsStale checks if an error is a Stale error.
func IsStale(err error) bool { return IsCode(err, ErrCodeStale) }

// CodeOf returns the ErrorCode from an error, or empty string if not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// FieldOf returns the Field from an error, or empty string if not an AppError or no field set.
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// Message returns the user-facing message of err. Errors that are not AppErrors,
// or AppErrors with a blank message, yield fallback so technical detail never leaks.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if msg := strings.TrimSpace(appErr.Message); msg != "" {
			return msg
		}
	}
	return fallback
}

// Normalize converts any error into an *AppError. AppErrors pass through untouched;
// anything else becomes code with fallback as its message and err as the cause.
func Normalize(err error, code ErrorCode, fallback string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if strings.TrimSpace(appErr.Message) == "" {
			cp := *appErr
			cp.Message = fallback
			return &cp
		}
		return appErr
	}
	return Wrap(err, code, fallback)
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrConflict
	ErrExpired
	ErrSelfInvitation
	ErrDuplicatePending
	ErrInvalidActivity
	ErrInvalidDuration
	ErrInvalidResponse
	ErrUnresolvedRecipient
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// Coordination errors. Business-rule violations surfaced to the caller as
// structured results; never swallowed, never retried automatically.

func InvalidActivity(activity string) *AppError {
	return &AppError{
		Code:    ErrInvalidActivity,
		Message: fmt.Sprintf("unrecognized activity %q", activity),
	}
}

func InvalidDuration(minutes int) *AppError {
	return &AppError{
		Code:    ErrInvalidDuration,
		Message: fmt.Sprintf("duration must be positive, got %d", minutes),
	}
}

func InvalidResponse(response string) *AppError {
	return &AppError{
		Code:    ErrInvalidResponse,
		Message: fmt.Sprintf("response must be accepted or declined, got %q", response),
	}
}

func SelfInvitation() *AppError {
	return &AppError{
		Code:    ErrSelfInvitation,
		Message: "cannot invite yourself",
	}
}

func DuplicatePending(activity string) *AppError {
	return &AppError{
		Code:    ErrDuplicatePending,
		Message: fmt.Sprintf("a pending invitation for %s already exists between these users", activity),
	}
}

func Expired(resource string) *AppError {
	return &AppError{
		Code:    ErrExpired,
		Message: fmt.Sprintf("%s has expired", resource),
	}
}

func UnresolvedRecipient(err error) *AppError {
	return &AppError{
		Code:    ErrUnresolvedRecipient,
		Message: "could not resolve notification recipient",
		Err:     err,
	}
}

// Code extracts the ErrorCode from err, or ErrInternal if err is not an AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return Code(err) == code
}

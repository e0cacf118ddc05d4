// Package apperr defines the coded errors shared by the store, the
// assessment engine and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeTimeout      = "TIMEOUT"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap keeps the code of an existing AppError and falls back to
// CodeInternal for anything else.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Code returns the code of the first AppError in the chain, or CodeInternal.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Retryable reports whether the caller may resubmit the same request.
func Retryable(err error) bool {
	switch Code(err) {
	case CodeConflict, CodeTimeout:
		return true
	}
	return false
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Timeout(message string, cause error) *AppError {
	return &AppError{Code: CodeTimeout, Message: message, Cause: cause}
}

func IsNotFound(err error) bool   { return Code(err) == CodeNotFound }
func IsValidation(err error) bool { return Code(err) == CodeValidation }
func IsConflict(err error) bool   { return Code(err) == CodeConflict }

// Package errors provides the unified error type and factory functions for
// SiteTrack. Every layer of the application (domain, application,
// infrastructure, interfaces) uses AppError as the single carrier for
// structured error information, enabling consistent HTTP responses and
// logging across the service.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type used throughout SiteTrack.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.CodeTaskNotFound, "task not found")
//	return errors.Wrap(err, errors.CodeDatabaseError, "failed to query tasks")
//	return errors.NotFound("project not found").WithDetail("id=" + id)
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error,
	// suitable for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (query parameters, entity IDs)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that wraps an existing error. If err is nil,
// Wrap returns nil so it can be used inline. When err is already an *AppError
// and code is CodeUnknown, the original code is preserved so the domain
// classification survives cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// ─────────────────────────────────────────────────────────────────────────────
// Shorthand factories for the most common failure categories
// ─────────────────────────────────────────────────────────────────────────────

// NotFound constructs an AppError with CodeNotFound.
func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// InvalidParam constructs an AppError with CodeInvalidParam.
func InvalidParam(message string) *AppError {
	return New(CodeInvalidParam, message)
}

// InvalidState constructs an AppError with CodeInvalidState.
func InvalidState(message string) *AppError {
	return New(CodeInvalidState, message)
}

// Unauthorized constructs an AppError with CodeUnauthorized.
func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

// Forbidden constructs an AppError with CodeForbidden.
func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

// Internal constructs an AppError with CodeInternal.
func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain carries one of the
// not-found codes.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case CodeNotFound, CodeTaskNotFound, CodeIssueNotFound,
				CodeProjectNotFound, CodeUserNotFound, CodeNotificationNotFound,
				CodeDocumentNotFound, CodeEventNotFound, CodeMatrixNotFound:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain, or CodeUnknown when the chain contains none.
func GetCode(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// HTTPStatus resolves err to the HTTP status of its first AppError code,
// defaulting to 500 for plain errors.
func HTTPStatus(err error) int {
	return GetCode(err).HTTPStatus()
}

// GetMessage returns the first AppError message in err's chain, or the plain
// error text. Used by the HTTP layer so wire responses stay free of internal
// cause chains.
func GetMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Package errors provides the domain errors returned by services and mapped to
// HTTP responses by the API layer.
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions so callers only need one import.
var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeValidation    Code = "VALIDATION"
	CodeDuplicateName Code = "DUPLICATE_NAME"
	CodeForbidden     Code = "FORBIDDEN"
	CodeConflict      Code = "CONFLICT"
	CodeCommitFailed  Code = "COMMIT_FAILED"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeDuplicateName, CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrDuplicateName = &Error{Code: CodeDuplicateName, Message: "name already exists"}
	ErrForbidden     = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrCommitFailed  = &Error{Code: CodeCommitFailed, Message: "commit failed"}
	ErrUnauthorized  = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails carries per-field messages keyed by JSON field name.
func ValidationWithDetails(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: fields}
}

func DuplicateName(msg string) *Error {
	return &Error{Code: CodeDuplicateName, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// CommitFailed wraps a persistence failure raised while committing a workflow.
func CommitFailed(cause error) *Error {
	return &Error{Code: CodeCommitFailed, Message: "failed to save recipe", cause: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// HTTPStatus returns the status for any error; non-domain errors are 500.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// FieldErrors returns the per-field details of a validation error, if any.
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		if fields, ok := e.Details.(map[string]string); ok {
			return fields
		}
	}
	return nil
}

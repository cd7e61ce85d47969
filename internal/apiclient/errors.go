package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an Error. Values are stable wire strings.
type Code string

const (
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeInvalidTransition  Code = "INVALID_STATUS_TRANSITION"
	CodeTimeout            Code = "TIMEOUT"
	CodeNetwork            Code = "NETWORK_ERROR"
	CodeCancelled          Code = "CANCELLED"
	CodeHTTP               Code = "HTTP_ERROR"
	CodeDatabase           Code = "DATABASE_ERROR"
	CodeNotImplemented     Code = "NOT_IMPLEMENTED"
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"
	CodeUnknown            Code = "UNKNOWN_ERROR"
)

// Error is the single error shape callers see, whatever the transport.
type Error struct {
	Message string         `json:"message"`
	Code    Code           `json:"code"`
	Status  int            `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotAuthenticated   = &Error{Code: CodeNotAuthenticated, Message: "not authenticated"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrDuplicateEmail     = &Error{Code: CodeDuplicateEmail, Message: "email already registered"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrInvalidTransition  = &Error{Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrTimeout            = &Error{Code: CodeTimeout, Message: "request timeout"}
	ErrNetwork            = &Error{Code: CodeNetwork, Message: "network error"}
	ErrCancelled          = &Error{Code: CodeCancelled, Message: "request cancelled"}
	ErrHTTP               = &Error{Code: CodeHTTP, Message: "http error"}
	ErrDatabase           = &Error{Code: CodeDatabase, Message: "database error"}
	ErrNotImplemented     = &Error{Code: CodeNotImplemented, Message: "not implemented yet"}
	ErrBackendUnavailable = &Error{Code: CodeBackendUnavailable, Message: "backend unavailable"}
)

// Newf builds an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that keeps cause reachable through errors.Unwrap.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// Normalize converts any error into the shared shape. nil stays nil.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(CodeTimeout, "request timeout", err)
	case errors.Is(err, context.Canceled):
		return Wrap(CodeCancelled, "request cancelled", err)
	}
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	return Wrap(CodeUnknown, msg, err)
}

// CodeOf returns the code of err after normalization, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// HTTPStatus maps a code to the status the REST backend answers with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotAuthenticated, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateEmail, CodeInvalidTransition:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotImplemented:
		return http.StatusNotImplemented
	case CodeBackendUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

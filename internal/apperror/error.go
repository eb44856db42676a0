// Package apperror defines the error taxonomy shared by services and HTTP
// handlers. Every user-visible failure carries a code and a readable message
// so the admin UI can render a specific reason.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how callers are expected to react to it.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindProcessing      Kind = "processing_failure"
	KindExternalService Kind = "external_service_failure"
	KindPersistence     Kind = "persistence_failure"
	KindUnauthorized    Kind = "unauthorized"
)

// Codes reported to clients.
const (
	CodeCapacityExceeded   = "CapacityExceeded"
	CodeEmptyField         = "EmptyField"
	CodeFieldTooLong       = "FieldTooLong"
	CodeInvalidKind        = "InvalidKind"
	CodeInvalidLocale      = "InvalidLocale"
	CodeUnsupportedFormat  = "UnsupportedFormat"
	CodeTooLarge           = "TooLarge"
	CodeInvalidRequest     = "InvalidRequest"
	CodeNotFound           = "NotFound"
	CodeProcessingFailed   = "ProcessingFailed"
	CodeCompressionFailed  = "CompressionFailed"
	CodePersistenceFailure = "PersistenceFailure"
	CodeUnauthorized       = "Unauthorized"
)

// Error is an application error with a taxonomy kind and a stable code.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPersistence:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Validation reports bad input. It never wraps a cause.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message, nil)
}

// Validationf is Validation with a formatted message.
func Validationf(code, format string, args ...any) *Error {
	return New(KindValidation, code, fmt.Sprintf(format, args...), nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, CodeNotFound, message, nil)
}

func Processing(message string, err error) *Error {
	return New(KindProcessing, CodeProcessingFailed, message, err)
}

func External(message string, err error) *Error {
	return New(KindExternalService, CodeCompressionFailed, message, err)
}

func Persistence(err error) *Error {
	return New(KindPersistence, CodePersistenceFailure, "database is not available", err)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, CodeUnauthorized, message, nil)
}

// As extracts an *Error from err. Errors outside the taxonomy are reported as
// persistence failures, since every other failure is classified at its origin.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Persistence(err)
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// KindOf returns the taxonomy kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

// Package apperror defines the error kinds the API produces and their
// mapping to HTTP status codes. Handlers only ever inspect the kind;
// services decide which kind a failure belongs to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	// Validation covers malformed or empty input, including no-op updates.
	Validation
	// NotFound covers both a missing user and a missing embedded item;
	// the message distinguishes them.
	NotFound
	// Conflict is a uniqueness violation at registration time.
	Conflict
	// Auth is a failed login or a missing/invalid token.
	Auth
	// Storage is a database failure.
	Storage
	// External is a failure in an outside service such as the image store.
	External
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
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

// StatusCode maps the error kind to the externally visible HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Auth:
		return http.StatusUnauthorized
	case Storage:
		return http.StatusInternalServerError
	case External:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validationf(format string, args ...any) *AppError {
	return &AppError{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *AppError {
	return &AppError{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

func Authf(format string, args ...any) *AppError {
	return &AppError{Kind: Auth, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// From returns the AppError in err's chain, or wraps err as an internal
// storage error so handlers always have a status to report.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: Storage, Message: "internal server error", Err: err}
}

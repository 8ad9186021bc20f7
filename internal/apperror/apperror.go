package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrMalformedID  = errors.New("malformed id")
	ErrDuplicate    = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound carries a caller-chosen message because the same missing blog is
// reported differently by delete ("blog not found") and update ("Blog not found").
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MalformedID reports an identifier that is not a syntactically valid id.
func MalformedID() *AppError {
	return &AppError{
		Err:     ErrMalformedID,
		Message: "malformatted id",
		Field:   "id",
	}
}

// Duplicate reports a unique index violation on field.
func Duplicate(field string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("expected `%s` to be unique", field),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: "token invalid",
	}
}

func TokenExpired() *AppError {
	return &AppError{
		Err:     ErrTokenExpired,
		Message: "token expired",
	}
}

// Unauthorized is a failed credential check (wrong username or password).
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

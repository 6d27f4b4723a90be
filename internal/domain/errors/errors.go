package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrProductNotFound     = errors.New("product not found")
	ErrIntentNotFound      = errors.New("payment intent not found")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	ErrForbidden           = errors.New("forbidden")
)

// Is reports whether any error in err's chain matches target. Passthrough to
// the standard library so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// AppError represents application error with HTTP status
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

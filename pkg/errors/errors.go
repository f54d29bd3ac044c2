package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, err)
}

func BadRequest(message string, err error) *AppError {
	return New("BAD_REQUEST", message, http.StatusBadRequest, err)
}

// Invalid is a 400 with a caller-chosen code, e.g. PHOTO_REQUIRED.
func Invalid(code, message string) *AppError {
	return New(code, message, http.StatusBadRequest, nil)
}

func Unauthorized(message string, err error) *AppError {
	return New("UNAUTHORIZED", message, http.StatusUnauthorized, err)
}

func Forbidden(message string, err error) *AppError {
	return New("FORBIDDEN", message, http.StatusForbidden, err)
}

func Conflict(message string) *AppError {
	return New("CONFLICT", message, http.StatusConflict, nil)
}

func Internal(message string, err error) *AppError {
	return New("INTERNAL_ERROR", message, http.StatusInternalServerError, err)
}

func Unavailable(message string, err error) *AppError {
	return New("SERVICE_UNAVAILABLE", message, http.StatusServiceUnavailable, err)
}

func TooManyRequests(message string) *AppError {
	return New("TOO_MANY_REQUESTS", message, http.StatusTooManyRequests, nil)
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	return Is(err, "NOT_FOUND")
}

package apperror

import (
	"errors"
	"net/http"
)

// Kind discriminates engine error categories independently of HTTP status,
// so callers can branch without string matching.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindAlreadyApplied    Kind = "ALREADY_APPLIED"
	KindVacancyNotOpen    Kind = "VACANCY_NOT_OPEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindConflict          Kind = "CONFLICT"
	KindMalformedSnapshot Kind = "MALFORMED_SNAPSHOT"
	KindInternal          Kind = "INTERNAL"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

func AlreadyApplied(message string) *AppError {
	return New(KindAlreadyApplied, http.StatusConflict, message, nil)
}

func VacancyNotOpen(message string) *AppError {
	return New(KindVacancyNotOpen, http.StatusUnprocessableEntity, message, nil)
}

func InvalidTransition(message string) *AppError {
	return New(KindInvalidTransition, http.StatusUnprocessableEntity, message, nil)
}

// Conflict marks a concurrent-modification race. Retryable by the caller.
func Conflict(message string) *AppError {
	return New(KindConflict, http.StatusConflict, message, nil)
}

func MalformedSnapshot(message string, err error) *AppError {
	return New(KindMalformedSnapshot, http.StatusUnprocessableEntity, message, err)
}

func Internal(err error) *AppError {
	return New(KindInternal, http.StatusInternalServerError, "Internal Server Error", err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

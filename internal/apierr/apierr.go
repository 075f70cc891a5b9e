package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeStore        = "store_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

func Store(err error) *Error {
	return New(http.StatusInternalServerError, CodeStore, err)
}

func CodeOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func StatusOf(err error, fallback int) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return fallback
}

package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
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

func NotFound(code string, format string, args ...any) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...)))
}

func BadRequest(code string, format string, args ...any) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...)))
}

func Conflict(code string, format string, args ...any) *Error {
	return New(http.StatusConflict, code, fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...)))
}

// StatusOf resolves the HTTP status and code for any error. Unknown errors map
// to 500 with the fallback code.
func StatusOf(err error, fallbackCode string) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := ae.Code
		if code == "" {
			code = fallbackCode
		}
		return status, code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, fallbackCode
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, fallbackCode
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, fallbackCode
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, fallbackCode
	}
	return http.StatusInternalServerError, fallbackCode
}

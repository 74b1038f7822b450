package response

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && (e.Err.Error() == t.Err.Error() || errors.Is(e.Err, t.Err))
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// Wrap attaches the status and message of base to cause, keeping cause
// reachable through errors.Is.
func Wrap(base error, cause error) error {
	var b *Error
	if !errors.As(base, &b) {
		return fmt.Errorf("%w: %w", base, cause)
	}
	return &Error{Code: b.Code, Err: fmt.Errorf("%w: %w", b.Err, cause)}
}

// StatusCode returns the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by Resource wraps exactly one of them.
var (
	ErrTransport  = errors.New("transport error")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

// Error describes a failed API call.
type Error struct {
	Kind       error
	Method     string
	Path       string
	StatusCode int    // 0 when the request never got a response
	Message    string // server-provided explanation, if any
	Err        error  // underlying network or decoding error, if any
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		s += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsUnauthorized reports whether err is a transport error caused by the
// server refusing the stored credential.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

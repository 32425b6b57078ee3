package domain

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// RequestError is returned by the auth transport when the API answers with a
// non-2xx status. Message holds the "message" field of the response body, if any.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// MessageOf extracts the API-provided message from err, or "" when err does not
// wrap a RequestError or the body carried none.
func MessageOf(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

package beets

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a non-success response from the beets web API.
//
// It records the HTTP status and the (possibly truncated) response body,
// and provides Temporary for retry decisions.
type Error struct {
	StatusCode int    // HTTP status code
	Status     string // HTTP status line, e.g. "404 NOT FOUND"
	Body       string // First bytes of the response body
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("beets: unexpected status %s", e.Status)
	}
	return fmt.Sprintf("beets: unexpected status %s: %s", e.Status, e.Body)
}

// Is reports whether target matches this error.
//
// ErrNotFound matches any 404 response; another *Error matches when the
// status codes are equal.
func (e *Error) Is(target error) bool {
	if target == ErrNotFound {
		return e.StatusCode == http.StatusNotFound
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// Temporary returns true if the request should be retried.
//
// Server errors (5xx) and rate limiting (429) are temporary; everything
// else is the caller's problem.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Predefined errors for common cases.
var (
	// ErrNotFound is matched by errors.Is for 404 responses.
	ErrNotFound = errors.New("beets: not found")

	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = errors.New("beets: invalid configuration")
)

// isRetryableError determines if an API error should trigger a retry.
func isRetryableError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}

// Package apierr carries the normalized form of upstream API failures. It
// sits below both the client and the feature handlers so either side can
// inspect errors without importing the other.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the normalized form of every upstream failure. Transport errors,
// decode errors and HTTP error statuses all surface as *Error; raw
// exceptions never escape the client.
type Error struct {
	Status           int
	Message          string
	ValidationErrors map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("upstream: status %d", e.Status)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsValidation reports whether err carries field-level validation errors.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && len(apiErr.ValidationErrors) > 0
}

// IsUnauthenticated reports whether err is an upstream 401.
func IsUnauthenticated(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// ValidationErrors extracts the field error map, nil when absent.
func ValidationErrors(err error) map[string][]string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.ValidationErrors
	}
	return nil
}

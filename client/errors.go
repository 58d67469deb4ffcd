package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned before any request is made when an
	// admin-only call has no stored token. Callers should send the user to login.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrAccessDenied is returned for HTTP 403.
	ErrAccessDenied = errors.New("access denied")
)

// APIError is a non-2xx response other than 403.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

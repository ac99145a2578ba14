package storeapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized covers a missing, invalid or expired token (401) and a
	// token without the admin role (403).
	ErrUnauthorized = errors.New("storeapi: unauthorized")
	ErrNotFound     = errors.New("storeapi: not found")
)

// APIError is a non-2xx answer. Message is the server's error text verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storeapi: %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match the sentinels by status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message extracts the server message from err, or err's text.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

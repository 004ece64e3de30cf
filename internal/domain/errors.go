package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork           = errors.New("network error")
	ErrServer            = errors.New("server error")
	ErrValidation        = errors.New("validation error")
	ErrAuth              = errors.New("authentication failed")
	ErrParse             = errors.New("parse error")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotAuthenticated  = errors.New("user is not logged in")
)

// APIError is a non-2xx answer from the story API.
type APIError struct {
	Status  int
	Title   string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api status %d", e.Status)
}

// Unwrap lets errors.Is match both ErrServer and the status-specific kind.
func (e *APIError) Unwrap() []error {
	if kind := e.Kind(); kind != ErrServer {
		return []error{kind, ErrServer}
	}
	return []error{ErrServer}
}

func (e *APIError) Kind() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusConflict:
		return ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrServer
	}
}

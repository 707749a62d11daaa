package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoRefreshToken means a refresh was needed but none is stored.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshRejected means the server refused the refresh token.
	ErrRefreshRejected = errors.New("refresh token rejected")

	// ErrUnauthorized means the request could not be authorized, either
	// because refresh failed or because the retried request got 401 again.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches a StatusError with status 404.
	ErrNotFound = errors.New("not found")
)

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Op  string // "GET /api/todos"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response other than the handled 401.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match on ErrUnauthorized and ErrNotFound.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// RefreshError is returned when the refresh endpoint answers non-2xx.
type RefreshError struct {
	StatusCode int
	Message    string
}

func (e *RefreshError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("refresh rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("refresh rejected with status %d: %s", e.StatusCode, e.Message)
}

func (e *RefreshError) Is(target error) bool { return target == ErrRefreshRejected }

// errorMessage extracts the human message from a JSON error body.
// The backend uses either {"message": ...} or {"error": ...}.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch {
	case payload.Error != "" && payload.Message != "":
		return payload.Error + ": " + payload.Message
	case payload.Error != "":
		return payload.Error
	default:
		return payload.Message
	}
}

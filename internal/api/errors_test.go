package api

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{`{"message": "Incorrect password"}`, "Incorrect password"},
		{`{"error": "Todo not found"}`, "Todo not found"},
		{`{"error": "Invalid todo ID", "message": "bad hex"}`, "Invalid todo ID: bad hex"},
		{"  <html>oops</html>\n", "<html>oops</html>"},
		{``, ""},
	}
	for _, tt := range tests {
		if got := errorMessage([]byte(tt.body)); got != tt.expected {
			t.Errorf("errorMessage(%q): expected %q, got %q", tt.body, tt.expected, got)
		}
	}
}

func TestStatusError_Is(t *testing.T) {
	if !errors.Is(&StatusError{StatusCode: 401}, ErrUnauthorized) {
		t.Error("401 should match ErrUnauthorized")
	}
	if !errors.Is(&StatusError{StatusCode: 404}, ErrNotFound) {
		t.Error("404 should match ErrNotFound")
	}
	if errors.Is(&StatusError{StatusCode: 500}, ErrNotFound) {
		t.Error("500 should not match ErrNotFound")
	}
	if got := (&StatusError{StatusCode: 500}).Error(); got != "server returned 500 Internal Server Error" {
		t.Errorf("unexpected message %q", got)
	}
}

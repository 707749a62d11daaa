// Package tokenstore persists the access and refresh tokens between runs.
package tokenstore

import (
	"context"
	"errors"
)

// Key names under which the token pair is stored.
const (
	AccessToken  = "access_token"
	RefreshToken = "refresh_token"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("token store closed")

// Store is durable key-scoped storage for credentials.
// Stores are opened by their constructor and released with Close.
type Store interface {
	// Get returns the value stored under name and whether it was present.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set stores value under name, replacing any previous value.
	Set(ctx context.Context, name, value string) error

	// Clear removes name. Clearing a missing key is not an error.
	Clear(ctx context.Context, name string) error

	// Close releases resources held by the store.
	Close() error
}

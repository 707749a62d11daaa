// Package session tracks whether the user is logged in.
//
// The state is optimistic: a stored access token makes the session
// Authenticated without checking it against the server. The first request
// whose refresh fails demotes the session to Anonymous.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"todoctl/internal/logger"
	"todoctl/internal/tokenstore"
)

// State is the authentication state of a session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Controller owns the login state and the tokens behind it.
type Controller struct {
	store tokenstore.Store

	mu    sync.RWMutex
	state State
}

// New creates a Controller whose initial state is derived from the
// presence of an access token in store.
func New(ctx context.Context, store tokenstore.Store) (*Controller, error) {
	_, ok, err := store.Get(ctx, tokenstore.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	c := &Controller{store: store}
	if ok {
		c.state = Authenticated
	}
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsAuthenticated reports whether the session is Authenticated.
func (c *Controller) IsAuthenticated() bool {
	return c.State() == Authenticated
}

// Login persists the token pair and marks the session Authenticated.
// An empty refresh clears any refresh token left from a previous login.
func (c *Controller) Login(ctx context.Context, access, refresh string) error {
	if access == "" {
		return errors.New("login returned no access token")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(ctx, tokenstore.AccessToken, access); err != nil {
		return err
	}
	var err error
	if refresh != "" {
		err = c.store.Set(ctx, tokenstore.RefreshToken, refresh)
	} else {
		err = c.store.Clear(ctx, tokenstore.RefreshToken)
	}
	if err != nil {
		return err
	}

	c.state = Authenticated
	logger.Debug("session authenticated", "refresh_token", refresh != "")
	return nil
}

// Logout clears both tokens and marks the session Anonymous.
// The state changes even if the store fails; the store errors are returned.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := errors.Join(
		c.store.Clear(ctx, tokenstore.AccessToken),
		c.store.Clear(ctx, tokenstore.RefreshToken),
	)
	c.state = Anonymous
	logger.Debug("session cleared")
	return err
}

// AccessToken returns the stored access token.
func (c *Controller) AccessToken(ctx context.Context) (string, bool, error) {
	return c.store.Get(ctx, tokenstore.AccessToken)
}

// HasRefreshToken reports whether a refresh token is stored.
func (c *Controller) HasRefreshToken(ctx context.Context) (bool, error) {
	_, ok, err := c.store.Get(ctx, tokenstore.RefreshToken)
	return ok, err
}

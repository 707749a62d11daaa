package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoAccessToken is returned by Claims when no access token is stored.
var ErrNoAccessToken = errors.New("no access token")

// Claims is the display-only view of an access token.
// It is decoded without verifying the signature; the server is the only
// judge of validity.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is before now.
// Tokens without an exp claim never report expired.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// Claims decodes the stored access token.
func (c *Controller) Claims(ctx context.Context) (Claims, error) {
	raw, ok, err := c.AccessToken(ctx)
	if err != nil {
		return Claims{}, err
	}
	if !ok {
		return Claims{}, ErrNoAccessToken
	}
	return ParseClaims(raw)
}

// ParseClaims decodes a JWT without verifying it.
func ParseClaims(raw string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &rc); err != nil {
		return Claims{}, fmt.Errorf("access token is not a JWT: %w", err)
	}

	var out Claims
	out.Subject = rc.Subject
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, nil
}

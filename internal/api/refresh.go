package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"todoctl/internal/logger"
	"todoctl/internal/tokenstore"
)

// Refresher trades the stored refresh token for a new access token.
// It writes the new access token to the store but never clears tokens.
type Refresher struct {
	transport
	store tokenstore.Store
	group singleflight.Group
}

// NewRefresher creates a Refresher reading and writing store.
func NewRefresher(cfg Config, store tokenstore.Store) (*Refresher, error) {
	t, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &Refresher{transport: t, store: store}, nil
}

// Refresh returns a new access token.
// Concurrent callers share a single refresh request.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do(tokenstore.RefreshToken, func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	refresh, ok, err := r.store.Get(ctx, tokenstore.RefreshToken)
	if err != nil {
		r.metrics.Refresh.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !ok || refresh == "" {
		r.metrics.Refresh.WithLabelValues("missing").Inc()
		return "", ErrNoRefreshToken
	}

	if requestID(ctx) == "" {
		ctx = withRequestID(ctx, uuid.NewString())
	}
	resp, err := r.send(ctx, http.MethodPost, RefreshPath, nil, refresh)
	if err != nil {
		r.metrics.Refresh.WithLabelValues("error").Inc()
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.metrics.Refresh.WithLabelValues("rejected").Inc()
		return "", &RefreshError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.AccessToken == "" {
		r.metrics.Refresh.WithLabelValues("rejected").Inc()
		return "", &RefreshError{StatusCode: resp.StatusCode, Message: "response has no access_token"}
	}

	if err := r.store.Set(ctx, tokenstore.AccessToken, payload.AccessToken); err != nil {
		r.metrics.Refresh.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to save refreshed token: %w", err)
	}

	r.metrics.Refresh.WithLabelValues("ok").Inc()
	logger.Debug("access token refreshed", "request_id", requestID(ctx))
	return payload.AccessToken, nil
}

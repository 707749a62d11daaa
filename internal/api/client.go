// Package api implements the HTTP client for the todo backend.
//
// Client.Do attaches the stored access token to every request. When the
// server answers 401 it asks the Refresher for a new access token once and
// resends the request once; if the refresh fails the session is ended.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todoctl/internal/logger"
)

const (
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries one ID per logical operation, retry included.
	RequestIDHeader = "X-Request-ID"

	// RefreshPath is the token refresh endpoint.
	RefreshPath = "/api/auth/refresh"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// ErrEmptyBody is returned by Response.Decode when the body is empty.
var ErrEmptyBody = errors.New("empty response body")

// Session is the part of the session controller the client needs.
type Session interface {
	AccessToken(ctx context.Context) (string, bool, error)
	Logout(ctx context.Context) error
}

// TokenRefresher exchanges the refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Config holds transport settings shared by Client and Refresher.
type Config struct {
	// BaseURL is the backend root, e.g. http://127.0.0.1:5000.
	BaseURL string

	// HTTPClient defaults to a client with DefaultTimeout.
	HTTPClient *http.Client

	// Metrics defaults to unregistered counters.
	Metrics *Metrics
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}
	return nil
}

// transport sends single HTTP exchanges. It never retries.
type transport struct {
	baseURL string
	http    *http.Client
	metrics *Metrics
}

func newTransport(cfg Config) (transport, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return transport{}, fmt.Errorf("invalid server URL: %q", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return transport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		metrics: metrics,
	}, nil
}

// send performs one exchange. bearer may be empty.
func (t *transport) send(ctx context.Context, method, path string, payload []byte, bearer string) (*Response, error) {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	if bearer != "" {
		(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	res, err := t.http.Do(req)
	if err != nil {
		t.metrics.Requests.WithLabelValues(method, "error").Inc()
		return nil, &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		t.metrics.Requests.WithLabelValues(method, "error").Inc()
		return nil, &TransportError{Op: op, Err: err}
	}
	t.metrics.Requests.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()

	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}, nil
}

// Client sends authenticated requests.
type Client struct {
	transport
	session   Session
	refresher TokenRefresher
}

// New creates a Client. session and refresher are required.
func New(cfg Config, session Session, refresher TokenRefresher) (*Client, error) {
	if session == nil || refresher == nil {
		return nil, errors.New("api client needs a session and a refresher")
	}
	t, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{transport: t, session: session, refresher: refresher}, nil
}

// Do sends an authenticated request. body, if non-nil, is sent as JSON.
//
// A 401 triggers at most one refresh and one retry. A 2xx response is
// returned as is; any other status becomes a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	if requestID(ctx) == "" {
		ctx = withRequestID(ctx, uuid.NewString())
	}
	log := logger.With("method", method, "path", path, "request_id", requestID(ctx))

	token, _, err := c.session.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, err
	}
	log.Debug("response", "status", resp.StatusCode)
	if resp.StatusCode != http.StatusUnauthorized {
		return checkStatus(resp)
	}

	token, err = c.refresher.Refresh(ctx)
	if err != nil {
		// Only a missing or refused refresh token ends the session.
		if !errors.Is(err, ErrNoRefreshToken) && !errors.Is(err, ErrRefreshRejected) {
			log.Debug("refresh failed, keeping session", "error", err)
			return nil, err
		}
		log.Debug("refresh failed, ending session", "error", err)
		if lerr := c.session.Logout(ctx); lerr != nil {
			log.Warn("failed to clear tokens", "error", lerr)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	c.metrics.Retries.Inc()
	resp, err = c.send(ctx, method, path, payload, token)
	if err != nil {
		log.Debug("retry failed", "error", err)
		return nil, err
	}
	log.Debug("retry response", "status", resp.StatusCode)
	return checkStatus(resp)
}

// DoPublic sends a request without credentials and without refresh.
func (c *Client) DoPublic(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	if requestID(ctx) == "" {
		ctx = withRequestID(ctx, uuid.NewString())
	}

	resp, err := c.send(ctx, method, path, payload, "")
	if err != nil {
		return nil, err
	}
	logger.Debug("response", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID(ctx))
	return checkStatus(resp)
}

func checkStatus(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

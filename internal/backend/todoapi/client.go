// Package todoapi implements the service.Service interface over the todo REST API.
package todoapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"

	"todoctl/internal/api"
	"todoctl/internal/config"
	"todoctl/internal/logger"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tokenstore"
)

// API paths.
const (
	loginPath           = "/api/auth/login"
	registerPath        = "/api/auth/register"
	todosPath           = "/api/todos"
	statsPath           = "/api/todos/get_stats"
	deleteCompletedPath = "/api/todos/delete_completed_tasks"
)

// Client implements service.Service over HTTP.
type Client struct {
	cfg      *config.Config
	store    tokenstore.Store
	session  *session.Controller
	api      *api.Client
	registry *prometheus.Registry
}

// New opens the configured token store and creates a client.
// reg receives the HTTP metrics; nil creates a private registry.
func New(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) (*Client, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := NewWithStore(ctx, cfg, store, reg, nil)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

// OpenStore opens the token store selected by cfg.TokenStore.
func OpenStore(ctx context.Context, cfg *config.Config) (tokenstore.Store, error) {
	if cfg.TokenStore == config.StoreRedis {
		store, err := tokenstore.OpenRedisStore(ctx, tokenstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := tokenstore.OpenFileStore(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	logger.Debug("using file token store", "path", store.Path())
	return store, nil
}

// NewWithStore creates a client over an open store. The client owns store
// and closes it in Close. httpClient may be nil.
func NewWithStore(ctx context.Context, cfg *config.Config, store tokenstore.Store, reg *prometheus.Registry, httpClient *http.Client) (*Client, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	sess, err := session.New(ctx, store)
	if err != nil {
		return nil, err
	}

	apiCfg := api.Config{
		BaseURL:    cfg.Server,
		HTTPClient: httpClient,
		Metrics:    api.NewMetrics(reg),
	}
	refresher, err := api.NewRefresher(apiCfg, store)
	if err != nil {
		return nil, err
	}
	client, err := api.New(apiCfg, sess, refresher)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:      cfg,
		store:    store,
		session:  sess,
		api:      client,
		registry: reg,
	}, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, registerPath, username, password)
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, loginPath, username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) error {
	resp, err := c.api.DoPublic(ctx, http.MethodPost, path, credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	var tokens tokenResponse
	if err := resp.Decode(&tokens); err != nil {
		return err
	}
	if tokens.AccessToken == "" {
		return errors.New("server returned no access token")
	}
	return c.session.Login(ctx, tokens.AccessToken, tokens.RefreshToken)
}

// Logout implements service.Service.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// Authenticated implements service.Service.
func (c *Client) Authenticated() bool {
	return c.session.IsAuthenticated()
}

// Status implements service.Service.
func (c *Client) Status(ctx context.Context) (service.Status, error) {
	st := service.Status{
		Authenticated: c.session.IsAuthenticated(),
		Server:        c.cfg.Server,
	}
	if !st.Authenticated {
		return st, nil
	}

	hasRefresh, err := c.session.HasRefreshToken(ctx)
	if err != nil {
		return st, err
	}
	st.HasRefresh = hasRefresh

	claims, err := c.session.Claims(ctx)
	if err != nil {
		// Opaque tokens are allowed.
		logger.Debug("access token is not a JWT", "error", err)
		return st, nil
	}
	st.Subject = claims.Subject
	st.ExpiresAt = claims.ExpiresAt
	return st, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	resp, err := c.api.Do(ctx, http.MethodGet, todosPath, nil)
	if err != nil {
		return nil, err
	}
	var tasks []service.Task
	if err := resp.Decode(&tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	resp, err := c.api.Do(ctx, http.MethodGet, taskPath(id), nil)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(resp)
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	resp, err := c.api.Do(ctx, http.MethodPost, todosPath, in)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(resp)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	resp, err := c.api.Do(ctx, http.MethodPut, taskPath(id), in)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(resp)
}

// ToggleTask implements service.Service. The request has no body.
func (c *Client) ToggleTask(ctx context.Context, id string) (service.Task, bool, error) {
	resp, err := c.api.Do(ctx, http.MethodPatch, taskPath(id), nil)
	if err != nil {
		return service.Task{}, false, err
	}
	task, err := decodeTask(resp)
	if errors.Is(err, api.ErrEmptyBody) {
		return service.Task{}, false, nil
	}
	if err != nil {
		return service.Task{}, false, err
	}
	return task, true, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.api.Do(ctx, http.MethodDelete, taskPath(id), nil)
	return err
}

// DeleteCompleted implements service.Service.
func (c *Client) DeleteCompleted(ctx context.Context) (string, error) {
	resp, err := c.api.Do(ctx, http.MethodDelete, deleteCompletedPath, nil)
	if err != nil {
		return "", err
	}
	var msg messageResponse
	if err := resp.Decode(&msg); err != nil && !errors.Is(err, api.ErrEmptyBody) {
		return "", err
	}
	return msg.Message, nil
}

// Stats implements service.Service.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	resp, err := c.api.Do(ctx, http.MethodGet, statsPath, nil)
	if err != nil {
		return service.Stats{}, err
	}
	var st service.Stats
	if err := resp.Decode(&st); err != nil {
		return service.Stats{}, err
	}
	return st, nil
}

// Close writes the metrics textfile if configured and closes the token store.
func (c *Client) Close() error {
	var errs []error
	if c.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(c.cfg.MetricsFile, c.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func taskPath(id string) string {
	return todosPath + "/" + url.PathEscape(id)
}

func decodeTask(resp *api.Response) (service.Task, error) {
	var t service.Task
	if err := resp.Decode(&t); err != nil {
		return service.Task{}, err
	}
	if t.ID == "" {
		return service.Task{}, fmt.Errorf("server returned a task without _id")
	}
	return t, nil
}

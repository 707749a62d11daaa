// Package config handles the configuration directory, settings and file paths.
//
// Settings come from, lowest to highest priority: built-in defaults,
// <dir>/config.yaml, a .env file in the working directory, TODOCTL_*
// environment variables, and the --server flag.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"todoctl/internal/logger"
)

const (
	// AppName is the application directory name.
	AppName = "todoctl"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored token filename.
	TokenFile = "tokens.json"

	// CacheFile is the local task cache filename.
	CacheFile = "tasks.json"

	// DefaultServer is the backend address used when none is configured.
	DefaultServer = "http://127.0.0.1:5000"

	// DefaultTimeout bounds each HTTP exchange.
	DefaultTimeout = 10 * time.Second
)

// Token store kinds.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// RedisSettings configures the redis token store.
type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Settings is the content of config.yaml.
type Settings struct {
	// Server is the backend base URL.
	Server string `yaml:"server"`

	// Timeout is a Go duration string such as "10s".
	Timeout string `yaml:"timeout"`

	// TokenStore is "file" (default) or "redis".
	TokenStore string `yaml:"token_store"`

	Redis RedisSettings `yaml:"redis"`

	// MetricsFile, when set, receives a Prometheus textfile at exit.
	MetricsFile string `yaml:"metrics_file"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Server      string
	Timeout     time.Duration
	TokenStore  string
	Redis       RedisSettings
	MetricsFile string
}

// New creates a Config with default settings.
// If configDir is empty, uses XDG_CONFIG_HOME/todoctl or $HOME/.config/todoctl.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:        dir,
		Server:     DefaultServer,
		Timeout:    DefaultTimeout,
		TokenStore: StoreFile,
	}, nil
}

// Load creates a Config and applies config.yaml, .env and the environment.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("ignoring .env", "error", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.SettingsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}

	if s.Server != "" {
		c.Server = s.Server
	}
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", SettingsFile, err)
		}
		c.Timeout = d
	}
	if s.TokenStore != "" {
		c.TokenStore = s.TokenStore
	}
	c.Redis = s.Redis
	c.MetricsFile = s.MetricsFile
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TODOCTL_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("TODOCTL_TOKEN_STORE"); v != "" {
		c.TokenStore = v
	}
	if v := os.Getenv("TODOCTL_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("TODOCTL_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("TODOCTL_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TODOCTL_REDIS_DB: %q", v)
		}
		c.Redis.DB = n
	}
	if v := os.Getenv("TODOCTL_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := os.Getenv("TODOCTL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TODOCTL_TIMEOUT: %q", v)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) validate() error {
	c.TokenStore = strings.ToLower(strings.TrimSpace(c.TokenStore))
	switch c.TokenStore {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown token_store: %q (want file or redis)", c.TokenStore)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the file token store.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// CachePath returns the path to the local task cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.Dir, CacheFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// RemoveCache deletes the task cache. A missing cache is not an error.
func (c *Config) RemoveCache() error {
	err := os.Remove(c.CachePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

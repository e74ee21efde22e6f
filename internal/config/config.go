// Package config handles the XDG configuration directory and config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskdesk"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKDESK_API_URL.
	EnvPrefix = "TASKDESK"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Defaults.
const (
	DefaultAPIURL   = "http://localhost:8000/api/v1"
	DefaultTimeout  = 5 * time.Second
	DefaultPageSize = 100
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the service implementation: "rest" or "googletasks".
	Backend string

	// APIURL is the base URL of the task REST API.
	APIURL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds each backend request.
	Timeout time.Duration

	// PageSize is the list limit.
	PageSize int
}

// New creates a Config with the default or specified config directory
// and the built-in defaults. Call Load to apply config.yaml and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdesk or $HOME/.config/taskdesk.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Backend:  BackendREST,
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		PageSize: DefaultPageSize,
	}, nil
}

// Load reads config.yaml from the config directory, if present, then
// applies TASKDESK_* environment overrides. A missing file is not an error.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigFile(c.FilePath())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", c.Backend)
	v.SetDefault("api_url", c.APIURL)
	v.SetDefault("token", c.Token)
	v.SetDefault("timeout", c.Timeout)
	v.SetDefault("page_size", c.PageSize)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", c.FilePath(), err)
		}
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("backend")))
	switch backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", backend, BackendREST, BackendGoogleTasks)
	}
	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %q", v.GetString("timeout"))
	}
	pageSize := v.GetInt("page_size")
	if pageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", pageSize)
	}

	c.Backend = backend
	c.APIURL = strings.TrimRight(v.GetString("api_url"), "/")
	c.Token = v.GetString("token")
	c.Timeout = timeout
	c.PageSize = pageSize
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// HasToken checks if the OAuth token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

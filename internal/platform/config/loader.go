package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".config.yaml"

// Loader reads configuration from an optional YAML file layered over the
// defaults, with environment variables applied last.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader reading .config.yaml from the working directory.
func NewLoader() *Loader {
	return &Loader{
		path:      defaultConfigFile,
		useDotEnv: true,
	}
}

// WithPath overrides the configuration file location.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Load retrieves configuration. A missing config file is not an error; the
// defaults plus environment overrides apply.
func (l *Loader) Load() (*Config, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := Default()

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", l.path, err)
		}
	case os.IsNotExist(err):
		// Defaults and environment only.
	default:
		return nil, fmt.Errorf("read config file %s: %w", l.path, err)
	}

	applyEnv(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VIBIBAY_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("VIBIBAY_PROFILE"); v != "" {
		cfg.API.Profile = v
	}
	if v := os.Getenv("VIBIBAY_SESSION_STORE"); v != "" {
		cfg.Session.Store.Type = v
	}
	if v := os.Getenv("VIBIBAY_SESSION_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.Store.Expiry = d
		}
	}
	if v := os.Getenv("VIBIBAY_SQLITE_DSN"); v != "" {
		cfg.Session.Store.SQLite.DSN = v
	}
	if v := os.Getenv("VIBIBAY_REDIS_ADDR"); v != "" {
		cfg.Session.Store.Redis.Addr = v
	}
	if v := os.Getenv("VIBIBAY_REDIS_PASSWORD"); v != "" {
		cfg.Session.Store.Redis.Password = v
	}
	if v := os.Getenv("VIBIBAY_WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if cfg.API.Profile == "" {
		return fmt.Errorf("api.profile is required")
	}
	if cfg.Web.Enabled && (cfg.Web.Port <= 0 || cfg.Web.Port > 65535) {
		return fmt.Errorf("web.port must be between 1 and 65535, got %d", cfg.Web.Port)
	}
	if cfg.Session.Store.Type == "redis" && cfg.Session.Store.Redis.Addr == "" {
		return fmt.Errorf("session.store.redis.addr is required for the redis store")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Environment variables that take precedence over the configuration file.
const (
	EnvAPIBaseURL = "HEALTHFLOW_API_BASE_URL"
	EnvTokenDB    = "HEALTHFLOW_TOKEN_DB"
)

// HealthFlow represents the main configuration structure for the healthflow client.
// It aggregates the API gateway, token storage, session, router, hooks, mock server
// and metrics sections.
type HealthFlow struct {
	API     API        `yaml:"api"`      // Outbound API gateway settings.
	Storage Storage    `yaml:"storage"`  // Durable token storage.
	Auth    Auth       `yaml:"auth"`     // Session bootstrap and renewal.
	Router  Router     `yaml:"router"`   // In-app navigation settings.
	Hooks   Hooks      `yaml:"hooks"`    // Data hook defaults.
	Mock    MockServer `yaml:"mock"`     // In-process mock API server.
	Metrics Metrics    `yaml:"metrics"`  // Prometheus exposition.
	LogFile string     `yaml:"log_file"` // Path to log.config.json.
}

// API configures the gateway client.
type API struct {
	BaseURL   string        `yaml:"base_url"`   // Prefix of every endpoint, e.g. "http://localhost:8000/api".
	Timeout   time.Duration `yaml:"timeout"`    // Per-request timeout. Zero means none.
	RateLimit *RateLimit    `yaml:"rate_limit"` // Optional client-side throttle.
	Pool      Pool          `yaml:"connection_pool"`
}

// RateLimit defines the number of requests allowed per second and the burst size.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Pool configures idle connection reuse of the outbound transport.
type Pool struct {
	MaxIdle     int           `yaml:"max_idle"`
	MaxPerHost  int           `yaml:"max_per_host"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type Storage struct {
	TokenDB string `yaml:"token_db"` // SQLite file holding the bearer token and session events.
}

// Auth holds settings of the session store.
type Auth struct {
	BootstrapTimeout *time.Duration `yaml:"bootstrap_timeout"` // Bound on the bootstrap /auth/me call. 0 disables it.
	AutoRenew        bool           `yaml:"auto_renew"`        // Renew the token before its exp claim.
	RenewBefore      time.Duration  `yaml:"renew_before"`      // How long before expiry to renew.
	RenewCheck       time.Duration  `yaml:"renew_check"`       // How often the renewal loop inspects the token.
}

type Router struct {
	Origin string `yaml:"origin"` // Links on this origin are handled in-app.
}

type Hooks struct {
	DefaultInterval time.Duration `yaml:"default_interval"` // Polling interval used by `watch` when none is given.
}

// MockServer configures `healthflow mock-server`.
type MockServer struct {
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	RateLimit *RateLimit    `yaml:"rate_limit"`
}

type Metrics struct {
	Addr string `yaml:"addr"` // Listen address for /metrics. Empty disables exposition.
}

const (
	DefaultBaseURL          = "http://localhost:8000/api"
	DefaultTokenDB          = "healthflow.db"
	DefaultBootstrapTimeout = 30 * time.Second
	DefaultRenewBefore      = 2 * time.Minute
	DefaultRenewCheck       = 30 * time.Second
	DefaultOrigin           = "http://localhost:3000"
	DefaultHookInterval     = 30 * time.Second
	DefaultMockAddr         = "127.0.0.1:8000"
	DefaultTokenTTL         = time.Hour
	DefaultLogFile          = "log.config.json"
)

// DefaultPool mirrors the idle settings of http.DefaultTransport.
var DefaultPool = Pool{
	MaxIdle:     100,
	MaxPerHost:  10,
	IdleTimeout: 90 * time.Second,
}

// Default returns a configuration with every default applied.
func Default() *HealthFlow {
	cfg := &HealthFlow{}
	cfg.applyDefaults(zap.NewNop())
	return cfg
}

// Load reads a YAML configuration file. Unknown keys are rejected.
func Load(path string) (*HealthFlow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config HealthFlow
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist, then
// applies environment overrides and validates the result.
func LoadOrDefault(path string, logger *zap.Logger) (*HealthFlow, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load configuration file %s: %w", path, err)
		}
		logger.Warn("Configuration file not found. Using defaults.", zap.String("path", path))
		cfg = &HealthFlow{}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(logger); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with HEALTHFLOW_* environment variables.
func (cfg *HealthFlow) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		cfg.API.BaseURL = v
	}
	if v, ok := lookup(EnvTokenDB); ok && v != "" {
		cfg.Storage.TokenDB = v
	}
}

// Validate applies defaults for unset values, warning about the important ones, and
// rejects values that cannot work.
func (cfg *HealthFlow) Validate(logger *zap.Logger) error {
	cfg.applyDefaults(logger)

	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url must be an absolute URL: %q", cfg.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url scheme must be http or https: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}
	if err := cfg.API.RateLimit.validate("api"); err != nil {
		return err
	}
	if err := cfg.Mock.RateLimit.validate("mock"); err != nil {
		return err
	}
	if *cfg.Auth.BootstrapTimeout < 0 {
		return fmt.Errorf("auth bootstrap_timeout must not be negative")
	}
	if cfg.Auth.AutoRenew && cfg.Auth.RenewBefore <= 0 {
		return fmt.Errorf("auth renew_before must be positive when auto_renew is enabled")
	}
	if o, err := url.Parse(cfg.Router.Origin); err != nil || o.Scheme == "" || o.Host == "" {
		return fmt.Errorf("router origin must be scheme://host: %q", cfg.Router.Origin)
	}
	if cfg.Hooks.DefaultInterval < 0 {
		return fmt.Errorf("hooks default_interval must not be negative")
	}
	return nil
}

func (cfg *HealthFlow) applyDefaults(logger *zap.Logger) {
	if cfg.API.BaseURL == "" {
		logger.Warn("api base_url not defined. Applying default.", zap.String("base_url", DefaultBaseURL))
		cfg.API.BaseURL = DefaultBaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.Pool.MaxIdle == 0 {
		cfg.API.Pool.MaxIdle = DefaultPool.MaxIdle
	}
	if cfg.API.Pool.MaxPerHost == 0 {
		cfg.API.Pool.MaxPerHost = DefaultPool.MaxPerHost
	}
	if cfg.API.Pool.IdleTimeout == 0 {
		cfg.API.Pool.IdleTimeout = DefaultPool.IdleTimeout
	}
	if cfg.Storage.TokenDB == "" {
		cfg.Storage.TokenDB = DefaultTokenDB
	}
	if cfg.Auth.BootstrapTimeout == nil {
		d := DefaultBootstrapTimeout
		cfg.Auth.BootstrapTimeout = &d
	}
	if cfg.Auth.RenewBefore == 0 {
		cfg.Auth.RenewBefore = DefaultRenewBefore
	}
	if cfg.Auth.RenewCheck <= 0 {
		cfg.Auth.RenewCheck = DefaultRenewCheck
	}
	if cfg.Router.Origin == "" {
		cfg.Router.Origin = DefaultOrigin
	}
	cfg.Router.Origin = strings.TrimRight(cfg.Router.Origin, "/")
	if cfg.Hooks.DefaultInterval == 0 {
		cfg.Hooks.DefaultInterval = DefaultHookInterval
	}
	if cfg.Mock.Addr == "" {
		cfg.Mock.Addr = DefaultMockAddr
	}
	if cfg.Mock.JWTSecret == "" {
		logger.Warn("mock jwt_secret not defined. Using an insecure development secret.")
		cfg.Mock.JWTSecret = "healthflow-dev-secret"
	}
	if cfg.Mock.TokenTTL == 0 {
		cfg.Mock.TokenTTL = DefaultTokenTTL
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}
}

func (rl *RateLimit) validate(section string) error {
	if rl == nil {
		return nil
	}
	if rl.RequestsPerSecond <= 0 {
		return fmt.Errorf("%s rate_limit requests_per_second must be positive", section)
	}
	if rl.Burst <= 0 {
		return fmt.Errorf("%s rate_limit burst must be positive", section)
	}
	return nil
}

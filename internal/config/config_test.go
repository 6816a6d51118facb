package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "healthflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOrDefault_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvTokenDB, "")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTokenDB, cfg.Storage.TokenDB)
	require.NotNil(t, cfg.Auth.BootstrapTimeout)
	assert.Equal(t, DefaultBootstrapTimeout, *cfg.Auth.BootstrapTimeout)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, DefaultOrigin, cfg.Router.Origin)
}

func TestLoadOrDefault_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.example.org/v1/
  timeout: 5s
  rate_limit:
    requests_per_second: 10
    burst: 20
auth:
  bootstrap_timeout: 0s
  auto_renew: true
  renew_before: 1m
router:
  origin: https://app.example.org/
`)
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvTokenDB, "/tmp/override.db")

	cfg, err := LoadOrDefault(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.org/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.NotNil(t, cfg.API.RateLimit)
	assert.Equal(t, 20, cfg.API.RateLimit.Burst)
	assert.Equal(t, time.Duration(0), *cfg.Auth.BootstrapTimeout)
	assert.True(t, cfg.Auth.AutoRenew)
	assert.Equal(t, "https://app.example.org", cfg.Router.Origin)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.TokenDB)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "api:\n  base_uri: http://x\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnv_BaseURL(t *testing.T) {
	cfg := &HealthFlow{API: API{BaseURL: "http://file"}}
	cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvAPIBaseURL {
			return "http://env:9000/api", true
		}
		return "", false
	})
	assert.Equal(t, "http://env:9000/api", cfg.API.BaseURL)
}

func TestValidate(t *testing.T) {
	negative := -time.Second

	tests := []struct {
		name    string
		cfg     HealthFlow
		wantErr string
	}{
		{
			name: "defaults are valid",
			cfg:  HealthFlow{},
		},
		{
			name:    "relative base url",
			cfg:     HealthFlow{API: API{BaseURL: "/api"}},
			wantErr: "absolute URL",
		},
		{
			name:    "unsupported scheme",
			cfg:     HealthFlow{API: API{BaseURL: "ftp://host/api"}},
			wantErr: "scheme",
		},
		{
			name:    "negative bootstrap timeout",
			cfg:     HealthFlow{Auth: Auth{BootstrapTimeout: &negative}},
			wantErr: "bootstrap_timeout",
		},
		{
			name:    "zero burst",
			cfg:     HealthFlow{API: API{RateLimit: &RateLimit{RequestsPerSecond: 1}}},
			wantErr: "burst",
		},
		{
			name:    "bad origin",
			cfg:     HealthFlow{Router: Router{Origin: "localhost"}},
			wantErr: "origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate(zap.NewNop())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

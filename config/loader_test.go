// 配置加载器测试。
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.True(t, cfg.Gateway.StrictSizes)
	assert.Empty(t, cfg.Credentials)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  http_port: 8888
  read_timeout: 60s
gateway:
  strict_sizes: false
  request_timeout: 20s
  dev_referer_markers: ["dev.local"]
quota:
  enabled: true
  limit: 10
  window: 1h
redis:
  addr: "redis.example.com:6379"
  db: 1
log:
  level: "debug"
  format: "console"
providers:
  fal:
    base_url: "https://fal.example.com"
    timeout: 45s
credentials:
  FAL_API_KEY: "yaml-fal"
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Gateway.StrictSizes)
	assert.Equal(t, 20*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, []string{"dev.local"}, cfg.Gateway.DevRefererMarkers)
	assert.True(t, cfg.Quota.Enabled)
	assert.Equal(t, int64(10), cfg.Quota.Limit)
	assert.Equal(t, time.Hour, cfg.Quota.Window)
	assert.Equal(t, "imagegate:quota:", cfg.Quota.KeyPrefix)
	assert.Equal(t, "redis.example.com:6379", cfg.Redis.Addr)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ProviderConfig{BaseURL: "https://fal.example.com", Timeout: 45 * time.Second}, cfg.Providers["fal"])
	assert.Equal(t, "yaml-fal", cfg.Credentials["FAL_API_KEY"])
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("IMAGEGATE_SERVER_HTTP_PORT", "7777")
	t.Setenv("IMAGEGATE_SERVER_RATE_LIMIT_RPS", "2.5")
	t.Setenv("IMAGEGATE_GATEWAY_STRICT_SIZES", "false")
	t.Setenv("IMAGEGATE_GATEWAY_REQUEST_TIMEOUT", "10s")
	t.Setenv("IMAGEGATE_GATEWAY_DEV_REFERER_MARKERS", "a.dev, b.dev")
	t.Setenv("IMAGEGATE_QUOTA_LIMIT", "3")
	t.Setenv("IMAGEGATE_LOG_LEVEL", "warn")
	t.Setenv("IMAGEGATE_SERVER_TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.HTTPPort)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.False(t, cfg.Gateway.StrictSizes)
	assert.Equal(t, 10*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, []string{"a.dev", "b.dev"}, cfg.Gateway.DevRefererMarkers)
	assert.Equal(t, int64(3), cfg.Quota.Limit)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  http_port: 8888
  metrics_port: 9999
`)
	t.Setenv("IMAGEGATE_SERVER_HTTP_PORT", "9000")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 9999, cfg.Server.MetricsPort)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYGATE_SERVER_HTTP_PORT", "6666")

	cfg, err := NewLoader().WithEnvPrefix("MYGATE").Load()
	require.NoError(t, err)
	assert.Equal(t, 6666, cfg.Server.HTTPPort)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("IMAGEGATE_GATEWAY_REQUEST_TIMEOUT", "soon")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGEGATE_GATEWAY_REQUEST_TIMEOUT")
}

func TestLoader_DotEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, ".env.local", "FAL_API_KEY=local-fal\nIMAGEGATE_SERVER_HTTP_PORT=8100\n")
	base := writeFile(t, dir, ".env", "FAL_API_KEY=base-fal\nOPENAI_API_KEY=base-openai\nIMAGEGATE_SERVER_HTTP_PORT=8200\n")
	t.Setenv("OPENAI_API_KEY", "process-openai")

	cfg, err := NewLoader().
		WithDotEnv(local, base, filepath.Join(dir, "missing.env")).
		WithCredentialKeys("FAL_API_KEY", "OPENAI_API_KEY", "XAI_API_KEY").
		Load()
	require.NoError(t, err)

	assert.Equal(t, 8100, cfg.Server.HTTPPort)
	assert.Equal(t, "local-fal", cfg.Credentials["FAL_API_KEY"])
	assert.Equal(t, "process-openai", cfg.Credentials["OPENAI_API_KEY"])
	assert.NotContains(t, cfg.Credentials, "XAI_API_KEY")
}

func TestLoader_CredentialEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
credentials:
  LUMA_API_KEY: "from-yaml"
  TOGETHER_API_KEY: "kept"
`)
	t.Setenv("LUMA_API_KEY", "  from-env  ")

	cfg, err := NewLoader().
		WithConfigPath(path).
		WithCredentialKeys("LUMA_API_KEY", "TOGETHER_API_KEY").
		Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Credentials["LUMA_API_KEY"])
	assert.Equal(t, "kept", cfg.Credentials["TOGETHER_API_KEY"])
}

func TestLoader_WithValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(*Config) error { return errors.New("nope") }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/imagegate.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "server: [unclosed")

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoader_WatchPaths(t *testing.T) {
	l := NewLoader().WithConfigPath("c.yaml").WithDotEnv(".env.local", ".env")
	assert.Equal(t, []string{"c.yaml", ".env.local", ".env"}, l.WatchPaths())
	assert.Empty(t, NewLoader().WatchPaths())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad http port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid HTTP port"},
		{"bad metrics port", func(c *Config) { c.Server.MetricsPort = 70000 }, "invalid metrics port"},
		{"negative rps", func(c *Config) { c.Server.RateLimitRPS = -1 }, "rate_limit_rps"},
		{"zero budget", func(c *Config) { c.Gateway.RequestTimeout = 0 }, "request_timeout must be positive"},
		{"write shorter than budget", func(c *Config) { c.Server.WriteTimeout = 10 * time.Second }, "write_timeout"},
		{"quota without limit", func(c *Config) { c.Quota.Enabled = true; c.Quota.Limit = 0 }, "quota limit"},
		{"quota without redis", func(c *Config) { c.Quota.Enabled = true; c.Redis.Addr = "" }, "quota requires redis"},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, "unknown log level"},
		{"trusted proxies ok", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.1"} }, ""},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }, "invalid trusted proxy"},
		{"negative provider timeout", func(c *Config) {
			c.Providers["luma"] = ProviderConfig{Timeout: -time.Second}
		}, "provider luma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustLoad_InvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", ":::")
	assert.Panics(t, func() { MustLoad(path) })
}

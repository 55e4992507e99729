// If you are AI: This file contains tests for configuration loading, env overrides and validation.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trinity/internal/core/bus"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 13412, cfg.Server.HTTPPort)
	assert.Equal(t, 8080, cfg.Server.HealthPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 256, cfg.Registry.ShardCount)
	assert.Equal(t, time.Second, cfg.Stream.FragmentInterval)
	assert.Equal(t, "audio/flac", cfg.Stream.ContentType)
	assert.Equal(t, time.Duration(0), cfg.Stream.IdleTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 44100, cfg.Codec.SampleRate)
	assert.Equal(t, 2, cfg.Codec.Channels)
	assert.Equal(t, 16, cfg.Codec.BitsPerSample)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trinity.yaml")
	data := `
server:
  http_port: 9000
  health_port: 9001
registry:
  shard_count: 64
stream:
  fragment_interval: 250ms
  content_type: audio/wav
  idle_timeout: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 9001, cfg.Server.HealthPort)
	assert.Equal(t, 64, cfg.Registry.ShardCount)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.FragmentInterval)
	assert.Equal(t, "audio/wav", cfg.Stream.ContentType)
	assert.Equal(t, 2*time.Minute, cfg.Stream.IdleTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("server:\n  rtmp_port: 1935\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestValidateShardCount(t *testing.T) {
	cfg := Default()
	cfg.Registry.ShardCount = 100

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "registry config:"))
}

func TestShardCountMatchesRegistry(t *testing.T) {
	assert.Equal(t, bus.DefaultShardCount, Default().Registry.ShardCount)

	for _, n := range []int{-4, 1, 2, 3, 6, 64, 100, 1024} {
		rc := RegistryConfig{ShardCount: n}
		_, regErr := bus.NewRegistry(n)
		assert.Equal(t, regErr == nil, rc.Validate() == nil, "shard count %d", n)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := map[string]func(*Config){
		"same ports":         func(c *Config) { c.Server.HealthPort = c.Server.HTTPPort },
		"bad port":           func(c *Config) { c.Server.HTTPPort = 70000 },
		"zero interval":      func(c *Config) { c.Stream.FragmentInterval = -time.Second },
		"negative idle":      func(c *Config) { c.Stream.IdleTimeout = -time.Second },
		"short secret":       func(c *Config) { c.Auth.Enabled = true; c.Auth.Secret = "short" },
		"unknown driver":     func(c *Config) { c.Database.Driver = "mysql" },
		"postgres no host":   func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" },
		"bad bits":           func(c *Config) { c.Codec.BitsPerSample = 12 },
		"bad log format":     func(c *Config) { c.Logging.Format = "xml" },
		"bad log level":      func(c *Config) { c.Logging.Level = "trace" },
		"zero max chunk":     func(c *Config) { c.Stream.MaxChunkBytes = -1 },
		"reap interval zero": func(c *Config) { c.Stream.IdleTimeout = time.Minute; c.Stream.ReapInterval = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAuthEnabledWithSecret(t *testing.T) {
	cfg := Default()
	cfg.Auth.Enabled = true
	cfg.Auth.Secret = "0123456789abcdef0123"
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SECRET_JWT_KEY": "from-env-secret-key",
		"DB_USER":        "trinity",
		"DB_PASSWORD":    "hunter2",
		"DB_HOST":        "db.internal",
		"DB_PORT":        "6543",
		"DB_NAME":        "audio",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var cfg Config
	require.NoError(t, cfg.applyEnv(lookup))

	assert.Equal(t, "from-env-secret-key", cfg.Auth.Secret)
	assert.Equal(t, "trinity", cfg.Database.User)
	assert.Equal(t, "hunter2", cfg.Database.Password)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "audio", cfg.Database.Name)

	env["DB_PORT"] = "not-a-port"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestParseUsesProcessEnv(t *testing.T) {
	t.Setenv("SECRET_JWT_KEY", "process-env-secret")

	cfg, err := Parse([]byte("auth:\n  secret: file-secret\n"))
	require.NoError(t, err)
	assert.Equal(t, "process-env-secret", cfg.Auth.Secret)
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=require", d.PostgresDSN())

	d.DSN = "postgres://explicit"
	assert.Equal(t, "postgres://explicit", d.PostgresDSN())
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "trinity.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	defaults := Default()
	assert.Equal(t, defaults.Server, cfg.Server)
	assert.Equal(t, defaults.Stream, cfg.Stream)
	assert.Equal(t, defaults.Codec, cfg.Codec)
	assert.Equal(t, defaults.Logging, cfg.Logging)
}

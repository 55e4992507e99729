// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
	"strings"

	"trinity/internal/core/bus"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Registry.Validate(); err != nil {
		return fmt.Errorf("registry config: %w", err)
	}
	if err := c.Stream.Validate(); err != nil {
		return fmt.Errorf("stream config: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Codec.Validate(); err != nil {
		return fmt.Errorf("codec config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HealthPort <= 0 || s.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 1 and 65535, got %d", s.HealthPort)
	}
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", s.HTTPPort)
	}
	if s.HealthPort == s.HTTPPort {
		return fmt.Errorf("health_port and http_port must be different, both are %d", s.HealthPort)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative, got %s", s.ShutdownTimeout)
	}
	return nil
}

// Validate checks that the shard count is a positive power of two.
func (r *RegistryConfig) Validate() error {
	if !bus.IsPowerOfTwo(r.ShardCount) {
		return fmt.Errorf("shard_count must be a positive power of two, got %d", r.ShardCount)
	}
	return nil
}

// Validate checks stream configuration values.
func (s *StreamConfig) Validate() error {
	if s.FragmentInterval <= 0 {
		return fmt.Errorf("fragment_interval must be positive, got %s", s.FragmentInterval)
	}
	if s.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must not be negative, got %s", s.IdleTimeout)
	}
	if s.IdleTimeout > 0 && s.ReapInterval <= 0 {
		return fmt.Errorf("reap_interval must be positive when idle_timeout is set, got %s", s.ReapInterval)
	}
	if s.MaxChunkBytes <= 0 {
		return fmt.Errorf("max_chunk_bytes must be positive, got %d", s.MaxChunkBytes)
	}
	return nil
}

// Validate checks authentication settings.
func (a *AuthConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if len(a.Secret) < 16 {
		return fmt.Errorf("secret must be at least 16 bytes when auth is enabled (set SECRET_JWT_KEY)")
	}
	if a.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", a.TokenTTL)
	}
	if a.LoginRPS <= 0 || a.LoginBurst <= 0 {
		return fmt.Errorf("login_rps and login_burst must be positive")
	}
	return nil
}

// Validate checks the database driver and its coordinates.
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.DSN == "" {
			return fmt.Errorf("dsn is required for sqlite")
		}
	case "postgres":
		if d.DSN == "" && (d.Host == "" || d.Name == "") {
			return fmt.Errorf("postgres requires dsn or host and name")
		}
		if d.Port <= 0 || d.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", d.Port)
		}
	default:
		return fmt.Errorf("driver must be sqlite or postgres, got %q", d.Driver)
	}
	return nil
}

// Validate checks the PCM format.
func (c *CodecConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 || c.Channels > 8 {
		return fmt.Errorf("channels must be between 1 and 8, got %d", c.Channels)
	}
	switch c.BitsPerSample {
	case 16, 24, 32:
	default:
		return fmt.Errorf("bits_per_sample must be 16, 24 or 32, got %d", c.BitsPerSample)
	}
	return nil
}

// Validate checks logger settings.
func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error, got %q", l.Level)
	}
	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("format must be json or console, got %q", l.Format)
	}
	return nil
}

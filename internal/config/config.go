// If you are AI: This file defines the configuration structure for trinity.
// It uses strict YAML decoding and explicit defaults.

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trinity/internal/core/bus"
)

// Config holds the complete server configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Registry RegistryConfig `yaml:"registry"`
	Stream   StreamConfig   `yaml:"stream"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Codec    CodecConfig    `yaml:"codec"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines HTTP listener settings.
type ServerConfig struct {
	BindAddress     string        `yaml:"bind_address"`     // Interface to listen on, empty for all
	HTTPPort        int           `yaml:"http_port"`        // Port for ingest, egress and API
	HealthPort      int           `yaml:"health_port"`      // Port for health and metrics
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period for in-flight requests
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // Header read timeout
	IdleTimeout     time.Duration `yaml:"idle_timeout"`     // Keep-alive idle timeout
}

// RegistryConfig defines stream registry sizing.
type RegistryConfig struct {
	ShardCount int `yaml:"shard_count"` // Must be a power of two
}

// StreamConfig defines distribution and ingest limits.
type StreamConfig struct {
	FragmentInterval time.Duration `yaml:"fragment_interval"` // Subscriber polling period
	ContentType      string        `yaml:"content_type"`      // Content-Type of HTTP egress
	IdleTimeout      time.Duration `yaml:"idle_timeout"`      // Remove streams idle this long, 0 disables
	ReapInterval     time.Duration `yaml:"reap_interval"`     // How often the reaper scans
	MaxChunkBytes    int64         `yaml:"max_chunk_bytes"`   // Request body cap for ingest
}

// AuthConfig defines token issuing and verification.
type AuthConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Secret     string        `yaml:"secret"`      // HMAC key, overridden by SECRET_JWT_KEY
	TokenTTL   time.Duration `yaml:"token_ttl"`   // Lifetime of issued tokens
	Issuer     string        `yaml:"issuer"`      // iss claim
	LoginRPS   float64       `yaml:"login_rps"`   // Per-IP login rate
	LoginBurst int           `yaml:"login_burst"` // Per-IP login burst
}

// DatabaseConfig defines the user store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "postgres"
	DSN      string `yaml:"dsn"`    // Used as-is when set
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// CodecConfig defines the PCM format accepted by the encode ingest path.
type CodecConfig struct {
	SampleRate    int `yaml:"sample_rate"`
	Channels      int `yaml:"channels"`
	BitsPerSample int `yaml:"bits_per_sample"`
}

// LoggingConfig defines logger construction.
type LoggingConfig struct {
	Level       string   `yaml:"level"`  // debug, info, warn, error
	Format      string   `yaml:"format"` // json or console
	OutputPaths []string `yaml:"output_paths,omitempty"`
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes, then applies environment
// overrides and defaults. An empty document yields the default configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields

		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, _ := Parse(nil)
	return cfg
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 13412
	}
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}

	if c.Registry.ShardCount == 0 {
		c.Registry.ShardCount = bus.DefaultShardCount
	}

	if c.Stream.FragmentInterval == 0 {
		c.Stream.FragmentInterval = time.Second
	}
	if c.Stream.ContentType == "" {
		c.Stream.ContentType = "audio/flac"
	}
	if c.Stream.ReapInterval == 0 {
		c.Stream.ReapInterval = 30 * time.Second
	}
	if c.Stream.MaxChunkBytes == 0 {
		c.Stream.MaxChunkBytes = 4 << 20
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "trinity"
	}
	if c.Auth.LoginRPS == 0 {
		c.Auth.LoginRPS = 1
	}
	if c.Auth.LoginBurst == 0 {
		c.Auth.LoginBurst = 5
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = "trinity.db"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "require"
	}

	if c.Codec.SampleRate == 0 {
		c.Codec.SampleRate = 44100
	}
	if c.Codec.Channels == 0 {
		c.Codec.Channels = 2
	}
	if c.Codec.BitsPerSample == 0 {
		c.Codec.BitsPerSample = 16
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if len(c.Logging.OutputPaths) == 0 {
		c.Logging.OutputPaths = []string{"stderr"}
	}
}

// PostgresDSN builds a libpq keyword/value connection string from the discrete fields.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

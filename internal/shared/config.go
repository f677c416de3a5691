package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every section can be overridden from the environment (STRIPD_* variables) via [Config.ApplyEnv].
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Strip    StripConfig    `toml:"strip"`
	Render   RenderConfig   `toml:"render"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings for the configuration API.
type ServerConfig struct {
	Host          string  `toml:"host" env:"STRIPD_HOST"`
	Port          int     `toml:"port" env:"STRIPD_PORT"`
	CORSOrigin    string  `toml:"cors_origin" env:"STRIPD_CORS_ORIGIN"`
	WriteRate     float64 `toml:"write_rate" env:"STRIPD_WRITE_RATE"`
	WriteBurst    int     `toml:"write_burst" env:"STRIPD_WRITE_BURST"`
	MaxBodyBytes  int64   `toml:"max_body_bytes" env:"STRIPD_MAX_BODY_BYTES"`
	StrictPersist bool    `toml:"strict_persist" env:"STRIPD_STRICT_PERSIST"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"STRIPD_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"STRIPD_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"STRIPD_DATABASE_MAX_IDLE_CONNS"`
}

// StripConfig describes the physical strip and the sink that drives it.
type StripConfig struct {
	Length         int    `toml:"length" env:"STRIPD_STRIP_LENGTH"`
	Sink           string `toml:"sink" env:"STRIPD_SINK"`
	Device         string `toml:"device" env:"STRIPD_DEVICE"`
	ArtNetAddr     string `toml:"artnet_addr" env:"STRIPD_ARTNET_ADDR"`
	ArtNetUniverse int    `toml:"artnet_universe" env:"STRIPD_ARTNET_UNIVERSE"`
}

// MaxArtNetUniverse is the largest 15-bit Art-Net port address.
const MaxArtNetUniverse = 1<<15 - 1

// RenderConfig contains render loop timing.
type RenderConfig struct {
	Tick                time.Duration `toml:"tick" env:"STRIPD_TICK"`
	OverrunWarnInterval time.Duration `toml:"overrun_warn_interval" env:"STRIPD_OVERRUN_WARN_INTERVAL"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" env:"STRIPD_LOG_LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides config values with any STRIPD_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	for _, section := range []any{&c.Server, &c.Database, &c.Strip, &c.Render, &c.Log} {
		if err := env.Parse(section); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Validate checks the values the server cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case c.Strip.Length <= 0:
		return fmt.Errorf("%w: strip.length must be positive", ErrInvalidConfig)
	case c.Render.Tick <= 0:
		return fmt.Errorf("%w: render.tick must be positive", ErrInvalidConfig)
	case c.Server.WriteRate < 0 || c.Server.WriteBurst < 0:
		return fmt.Errorf("%w: server.write_rate and server.write_burst must not be negative", ErrInvalidConfig)
	case c.Server.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalidConfig)
	case c.Strip.ArtNetUniverse < 0 || c.Strip.ArtNetUniverse > MaxArtNetUniverse:
		return fmt.Errorf("%w: strip.artnet_universe %d out of range 0-%d", ErrInvalidConfig, c.Strip.ArtNetUniverse, MaxArtNetUniverse)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig loads path when it exists, falls back to [DefaultConfig] otherwise,
// then applies environment overrides and validates the result.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

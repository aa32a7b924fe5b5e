// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Start date sources.
const (
	StartDateClient = "client"
	StartDateServer = "server"
)

// Config holds configuration knobs for the HTTP server and the store.
type Config struct {
	HTTPAddr          string        `yaml:"http_addr"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	StartDateSource   string        `yaml:"start_date_source"`
	CORSAllowedOrigin string        `yaml:"cors_allowed_origin"`
	Storage           StorageConfig `yaml:"storage"`
	Log               LogConfig     `yaml:"log"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// LogConfig configures the service logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// StampStartDate reports whether the server assigns start dates.
func (c Config) StampStartDate() bool { return c.StartDateSource == StartDateServer }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, def time.Duration) time.Duration {
	sec := atoienv(key, -1)
	if sec < 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		ShutdownTimeout: 15 * time.Second,
		StartDateSource: StartDateClient,
		Storage:         StorageConfig{Driver: DriverFile, Path: "./data.json"},
		Log:             LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path or a missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.ShutdownTimeout = durenvs("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.StartDateSource = getenv("START_DATE_SOURCE", c.StartDateSource)
	c.CORSAllowedOrigin = getenv("CORS_ALLOWED_ORIGIN", c.CORSAllowedOrigin)
	c.Storage.Driver = getenv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getenv("DATA_PATH", c.Storage.Path)
	c.Log.Level = getenv("LOG_LEVEL", c.Log.Level)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	switch c.StartDateSource {
	case StartDateClient, StartDateServer:
	default:
		return fmt.Errorf("unknown start date source %q", c.StartDateSource)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Package config loads the YAML configuration file and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no path is given.
const DefaultPath = "db_config.yml"

// Environment variables that override file values.
const (
	EnvDriver   = "CRUDFORM_DB_DRIVER"
	EnvDatabase = "CRUDFORM_DB_DATABASE"
	EnvAddr     = "CRUDFORM_ADDR"
	EnvLogLevel = "CRUDFORM_LOG_LEVEL"
)

// Database selects the storage backend.
type Database struct {
	Driver   string `yaml:"driver" json:"driver"`
	Database string `yaml:"database" json:"database"`
}

// Server configures the web host.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Log configures the default logger.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Config is the full application configuration.
type Config struct {
	SQLite Database `yaml:"sqlite" json:"sqlite"`
	Server Server   `yaml:"server" json:"server"`
	Log    Log      `yaml:"log" json:"log"`
}

// Default returns the configuration used when the file is missing.
func Default() Config {
	return Config{
		SQLite: Database{Driver: "sqlite", Database: "crudform.db"},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path (DefaultPath when empty). A missing file is not an error;
// defaults and environment overrides still apply.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.SQLite.Driver = getenv(EnvDriver, c.SQLite.Driver)
	c.SQLite.Database = getenv(EnvDatabase, c.SQLite.Database)
	c.Server.Addr = getenv(EnvAddr, c.Server.Addr)
	c.Log.Level = getenv(EnvLogLevel, c.Log.Level)
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Validate checks the fields the application cannot start without.
func (c Config) Validate() error {
	return validation.Errors{
		"sqlite": validation.ValidateStruct(&c.SQLite,
			validation.Field(&c.SQLite.Driver, validation.Required, validation.In("sqlite", "sqlite3")),
			validation.Field(&c.SQLite.Database, validation.Required),
		),
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Addr, validation.Required),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		),
	}.Filter()
}

// DatabaseURL renders the connection string as driver:///database.
func (c Config) DatabaseURL() string {
	return c.SQLite.Driver + ":///" + c.SQLite.Database
}

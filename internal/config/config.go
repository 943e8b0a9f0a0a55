package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	ConfirmDelete bool `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Storage
	DBDriver string `yaml:"db_driver" json:"db_driver"` // sqlite or postgres
	DBPath   string `yaml:"db_path" json:"db_path"`     // SQLite file
	DBDSN    string `yaml:"db_dsn" json:"db_dsn"`       // PostgreSQL connection string

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	// HTTP API
	ServerAddr string `yaml:"server_addr" json:"server_addr"`
}

// Dir returns the application directory (~/.kissboard)
func Dir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".kissboard"
	}
	return filepath.Join(home, ".kissboard")
}

// Path returns the config file path. KISSBOARD_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("KISSBOARD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		ConfirmDelete: true,
		DBDriver:      "sqlite",
		DBPath:        filepath.Join(dir, "board.db"),
		LogLevel:      "INFO",
		LogFile:       filepath.Join(dir, "logs", "kissboard.log"),
		LogConsole:    false,
		ServerAddr:    ":8080",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ApplyEnv overrides fields from KISSBOARD_* environment variables
func (c *Config) ApplyEnv() {
	c.DBDriver = getEnv("KISSBOARD_DB_DRIVER", c.DBDriver)
	c.DBPath = getEnv("KISSBOARD_DB_PATH", c.DBPath)
	c.DBDSN = getEnv("KISSBOARD_DB_DSN", c.DBDSN)
	c.LogLevel = getEnv("KISSBOARD_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("KISSBOARD_LOG_FILE", c.LogFile)
	c.ServerAddr = getEnv("KISSBOARD_SERVER_ADDR", c.ServerAddr)
	if v := os.Getenv("KISSBOARD_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true" || v == "1"
	}
}

// Validate checks field combinations that cannot work
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for the sqlite driver")
		}
	case "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("db_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("db_driver must be sqlite or postgres, got %q", c.DBDriver)
	}
	return nil
}

// DSN returns the data source for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DBDSN
	}
	return c.DBPath
}

// Load loads config from Path(), then applies environment overrides
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Return defaults if no config
		cfg.ApplyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyEnv()

	return cfg, nil
}

// Save saves config to Path()
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes the config atomically so a crash never leaves a torn file
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

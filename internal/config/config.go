// Package config loads the server configuration: defaults, an optional YAML
// file, then environment variables (optionally from a .env file).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
	// PageSize is the number of posts per feed page.
	PageSize int `yaml:"page_size"`
	// SessionTTL is how long a login lasts.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// SecureCookies marks session and CSRF cookies Secure.
	SecureCookies bool `yaml:"secure_cookies"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:       ":8080",
		DBPath:     "./data/blogicum.db",
		PageSize:   10,
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
	}
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then path (if non-empty), then
// .env and the process environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env", "error", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. PORT is honoured
// for hosting platforms that set it.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if p := getenv("PORT"); p != "" {
		c.Addr = ":" + p
	}
	if v := getenv("BLOGICUM_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("BLOGICUM_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("BLOGICUM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("BLOGICUM_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BLOGICUM_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := getenv("BLOGICUM_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BLOGICUM_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := getenv("BLOGICUM_SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOGICUM_SECURE_COOKIES: %w", err)
		}
		c.SecureCookies = b
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

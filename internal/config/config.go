// Package config defines the runtime configuration for the tea party server
// and loads it from an optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tuneable for one server process.
type Config struct {
	ListenAddr    string `yaml:"listen_addr"`
	MetricsAddr   string `yaml:"metrics_addr"`
	ServerName    string `yaml:"server_name"`
	EventBuffer   int    `yaml:"event_buffer"`   // registry event channel capacity
	SessionBuffer int    `yaml:"session_buffer"` // per-session outbound queue capacity
	LogLevel      string `yaml:"log_level"`
}

// Default returns a complete configuration usable without any file.
func Default() Config {
	return Config{
		ListenAddr:    ":8080",
		MetricsAddr:   ":9090",
		ServerName:    "Virtual Tea Party",
		EventBuffer:   128,
		SessionBuffer: 32,
		LogLevel:      "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file is not an error: the defaults stand on their own.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.ServerName == "" {
		return fmt.Errorf("server_name must not be empty")
	}
	if c.EventBuffer < 0 {
		return fmt.Errorf("event_buffer must not be negative: %d", c.EventBuffer)
	}
	if c.SessionBuffer < 0 {
		return fmt.Errorf("session_buffer must not be negative: %d", c.SessionBuffer)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

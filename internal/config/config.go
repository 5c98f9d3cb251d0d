package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/xadopt/internal/registry"
)

const (
	DefaultDockLayer    = "above"
	DefaultDockAppClass = "DockApp"
	DefaultLogLevel     = "info"
)

// LoggingConfig controls the daemon's log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file,omitempty"`
	Format string `yaml:"format"` // "text" (default) or "json"
}

// Config holds the application configuration.
type Config struct {
	Display        string        `yaml:"display,omitempty"`
	XAuthority     string        `yaml:"xauthority,omitempty"`
	Locale         string        `yaml:"locale,omitempty"`
	DockLayer      string        `yaml:"dock_layer"`
	DockAppClass   string        `yaml:"dockapp_class"`
	ManageExisting bool          `yaml:"manage_existing"`
	IPCSocket      string        `yaml:"ipc_socket,omitempty"`
	RescanHotkey   string        `yaml:"rescan_hotkey,omitempty"`
	ReloadHotkey   string        `yaml:"reload_hotkey,omitempty"`
	LogLevel       string        `yaml:"log_level"`
	Logging        LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		DockLayer:      DefaultDockLayer,
		DockAppClass:   DefaultDockAppClass,
		ManageExisting: true,
		LogLevel:       DefaultLogLevel,
		Logging: LoggingConfig{
			Format: "text",
		},
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "xadopt", "config.yaml"), nil
}

// GetDockLayer returns the parsed dock layer. Validate guarantees it parses.
func (c *Config) GetDockLayer() registry.Layer {
	l, err := registry.ParseLayer(c.DockLayer)
	if err != nil {
		return registry.LayerAbove
	}
	return l
}

// GetLoggingConfig returns the logging configuration with defaults applied.
// logging.level, when set, overrides the top-level log_level.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{Level: DefaultLogLevel, Format: "text"}
	}
	cfg := c.Logging
	if cfg.Level == "" {
		cfg.Level = c.LogLevel
	}
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	return cfg
}

// SlogLevel maps a configured level name to a slog level.
func SlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := registry.ParseLayer(c.DockLayer); err != nil {
		return &ValidationError{Path: "dock_layer", Err: err}
	}
	if strings.TrimSpace(c.DockAppClass) == "" {
		return &ValidationError{Path: "dockapp_class", Err: fmt.Errorf("dockapp_class must not be empty")}
	}
	if !validLevel(c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.Level != "" && !validLevel(c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warning, error")}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}
	if c.IPCSocket != "" && !filepath.IsAbs(c.IPCSocket) {
		return &ValidationError{Path: "ipc_socket", Err: fmt.Errorf("ipc_socket must be an absolute path")}
	}
	if c.Display != "" && !strings.Contains(c.Display, ":") {
		return &ValidationError{Path: "display", Err: fmt.Errorf("display must look like [host]:number[.screen]")}
	}
	return nil
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

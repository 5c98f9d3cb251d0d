package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.Locale != nil {
		cfg.Locale = *raw.Locale
	}
	if raw.DockLayer != nil {
		cfg.DockLayer = *raw.DockLayer
	}
	if raw.DockAppClass != nil {
		cfg.DockAppClass = *raw.DockAppClass
	}
	if raw.ManageExisting != nil {
		cfg.ManageExisting = *raw.ManageExisting
	}
	if raw.IPCSocket != nil {
		cfg.IPCSocket = *raw.IPCSocket
	}
	if raw.RescanHotkey != nil {
		cfg.RescanHotkey = *raw.RescanHotkey
	}
	if raw.ReloadHotkey != nil {
		cfg.ReloadHotkey = *raw.ReloadHotkey
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		if raw.Logging.Format != nil {
			cfg.Logging.Format = *raw.Logging.Format
		}
	}

	return cfg
}

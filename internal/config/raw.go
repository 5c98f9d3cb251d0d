package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawLogging struct {
	Level  *string `yaml:"level"`
	File   *string `yaml:"file"`
	Format *string `yaml:"format"`
}

// RawConfig is one file as written. A nil field was not set in that file.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Display        *string     `yaml:"display"`
	XAuthority     *string     `yaml:"xauthority"`
	Locale         *string     `yaml:"locale"`
	DockLayer      *string     `yaml:"dock_layer"`
	DockAppClass   *string     `yaml:"dockapp_class"`
	ManageExisting *bool       `yaml:"manage_existing"`
	IPCSocket      *string     `yaml:"ipc_socket"`
	RescanHotkey   *string     `yaml:"rescan_hotkey"`
	ReloadHotkey   *string     `yaml:"reload_hotkey"`
	LogLevel       *string     `yaml:"log_level"`
	Logging        *RawLogging `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.Locale != nil {
		out.Locale = overlay.Locale
	}
	if overlay.DockLayer != nil {
		out.DockLayer = overlay.DockLayer
	}
	if overlay.DockAppClass != nil {
		out.DockAppClass = overlay.DockAppClass
	}
	if overlay.ManageExisting != nil {
		out.ManageExisting = overlay.ManageExisting
	}
	if overlay.IPCSocket != nil {
		out.IPCSocket = overlay.IPCSocket
	}
	if overlay.RescanHotkey != nil {
		out.RescanHotkey = overlay.RescanHotkey
	}
	if overlay.ReloadHotkey != nil {
		out.ReloadHotkey = overlay.ReloadHotkey
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	if overlay.Logging != nil {
		merged := RawLogging{}
		if out.Logging != nil {
			merged = *out.Logging
		}
		if overlay.Logging.Level != nil {
			merged.Level = overlay.Logging.Level
		}
		if overlay.Logging.File != nil {
			merged.File = overlay.Logging.File
		}
		if overlay.Logging.Format != nil {
			merged.Format = overlay.Logging.Format
		}
		out.Logging = &merged
	}

	// Includes are resolved per file, never inherited.
	out.Include = nil
	return out
}

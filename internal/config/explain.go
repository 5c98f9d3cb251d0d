package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	display
//	xauthority
//	locale
//	dock_layer
//	dockapp_class
//	manage_existing
//	ipc_socket
//	rescan_hotkey
//	reload_hotkey
//	log_level
//	logging.level
//	logging.file
//	logging.format
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "logging" {
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "level":
			return cfg.Logging.Level, nil
		case "file":
			return cfg.Logging.File, nil
		case "format":
			return cfg.Logging.Format, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch parts[0] {
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	case "locale":
		return cfg.Locale, nil
	case "dock_layer":
		return cfg.DockLayer, nil
	case "dockapp_class":
		return cfg.DockAppClass, nil
	case "manage_existing":
		return cfg.ManageExisting, nil
	case "ipc_socket":
		return cfg.IPCSocket, nil
	case "rescan_hotkey":
		return cfg.RescanHotkey, nil
	case "reload_hotkey":
		return cfg.ReloadHotkey, nil
	case "log_level":
		return cfg.LogLevel, nil
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

package daemon

import (
	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/session"
)

func settingsFrom(cfg *config.Config) session.Settings {
	return session.Settings{
		DockLayer:    cfg.GetDockLayer(),
		DockAppClass: cfg.DockAppClass,
	}
}

func loadConfigFile(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// Config returns the configuration currently in effect.
func (d *Daemon) Config() *config.Config {
	return d.cfg.Load()
}

// Reload rereads the config file and applies the settings that can change
// at runtime. A file that fails to load or validate leaves the running
// configuration untouched. Implements ipc.Backend.
func (d *Daemon) Reload() error {
	next, err := d.loadConfig(d.configPath)
	if err != nil {
		d.logger.Warn("config reload failed", "err", err)
		return err
	}

	if !d.lock() {
		return nil
	}
	defer d.mu.Unlock()

	prev := d.cfg.Load()
	if err := d.sess.Startup(true, settingsFrom(next)); err != nil {
		return err
	}
	d.cfg.Store(next)

	for _, key := range restartOnly(prev, next) {
		d.logger.Warn("config change takes effect after restart", "key", key)
	}
	d.logger.Info("config reloaded", "dock_layer", next.DockLayer, "dockapp_class", next.DockAppClass)
	return nil
}

// restartOnly lists keys that changed but are only read at startup.
func restartOnly(prev, next *config.Config) []string {
	var keys []string
	if prev.Display != next.Display {
		keys = append(keys, "display")
	}
	if prev.XAuthority != next.XAuthority {
		keys = append(keys, "xauthority")
	}
	if prev.Locale != next.Locale {
		keys = append(keys, "locale")
	}
	if prev.IPCSocket != next.IPCSocket {
		keys = append(keys, "ipc_socket")
	}
	if prev.RescanHotkey != next.RescanHotkey {
		keys = append(keys, "rescan_hotkey")
	}
	if prev.ReloadHotkey != next.ReloadHotkey {
		keys = append(keys, "reload_hotkey")
	}
	if prev.GetLoggingConfig() != next.GetLoggingConfig() {
		keys = append(keys, "logging")
	}
	return keys
}

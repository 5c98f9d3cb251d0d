// Package daemon runs the adoption session against a live display: it routes
// root events to the orchestrator and collaborators, and serves status and
// control requests over IPC.
package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/ipc"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
	"github.com/1broseidon/xadopt/internal/session"
)

// Conn is the connection the daemon drives.
type Conn interface {
	session.Conn
	Configure(ev xproto.ConfigureRequestEvent)
}

// Daemon owns one session. Event handlers and IPC requests are serialized by
// a single mutex, so session state is only ever touched by one goroutine at a
// time.
type Daemon struct {
	mu      sync.Mutex
	conn    Conn
	sess    *session.Session
	stopped bool

	cfg        atomic.Pointer[config.Config]
	configPath string
	loadConfig func(path string) (*config.Config, error)

	logger *slog.Logger
}

// New builds a daemon for conn. configPath is reread on Reload; empty means
// the default config path.
func New(conn Conn, cfg *config.Config, configPath string, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	locale, err := prop.ResolveLocale(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}

	d := &Daemon{
		conn:       conn,
		sess:       session.New(conn, locale, settingsFrom(cfg), logger),
		configPath: configPath,
		loadConfig: loadConfigFile,
		logger:     logger,
	}
	d.cfg.Store(cfg)
	return d, nil
}

// Session returns the daemon's session.
func (d *Daemon) Session() *session.Session {
	return d.sess
}

// Start interns atoms and, when configured, adopts the windows that already
// exist.
func (d *Daemon) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg := d.cfg.Load()
	if err := d.sess.Startup(false, settingsFrom(cfg)); err != nil {
		return err
	}
	d.logger.Info("session started",
		"locale", d.sess.Codec.Locale().Codeset,
		"dock_layer", cfg.DockLayer,
		"dockapp_class", cfg.DockAppClass)

	if cfg.ManageExisting {
		d.sess.Manager.ManageAll()
		d.logger.Info("adopted existing windows", "managed", d.sess.Registry.Len())
	}
	return nil
}

// Stop releases every adopted window. Events arriving afterwards are ignored.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.sess.Shutdown(false)
	d.logger.Info("session shut down")
}

// lock takes the session mutex. It reports false, with the mutex released,
// once the daemon has stopped.
func (d *Daemon) lock() bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	return true
}

// HandleMapRequest adopts a window asking to be mapped, or maps it again if
// it is already managed.
func (d *Daemon) HandleMapRequest(ev xproto.MapRequestEvent) {
	if !d.lock() {
		return
	}
	defer d.mu.Unlock()

	if w, ok := d.sess.Registry.Find(ev.Window); ok {
		if w.Kind() == registry.KindClient {
			d.conn.Map(ev.Window)
		}
		return
	}
	outcome := d.sess.Manager.Manage(ev.Window)
	d.logger.Debug("map request", "window", ev.Window, "outcome", outcome)
}

// HandleConfigureRequest grants geometry requests, except for swallowed dock
// apps whose geometry the dock owns.
func (d *Daemon) HandleConfigureRequest(ev xproto.ConfigureRequestEvent) {
	if !d.lock() {
		return
	}
	defer d.mu.Unlock()

	if w, ok := d.sess.Registry.Find(ev.Window); ok && w.Kind() == registry.KindDock {
		return
	}
	d.conn.Configure(ev)
}

// HandleUnmapNotify withdraws a window its client unmapped.
func (d *Daemon) HandleUnmapNotify(ev xproto.UnmapNotifyEvent) {
	if !d.lock() {
		return
	}
	defer d.mu.Unlock()

	if d.sess.Withdraw(ev.Window) {
		d.logger.Debug("unmap", "window", ev.Window)
	}
}

// HandleDestroyNotify releases a destroyed window.
func (d *Daemon) HandleDestroyNotify(ev xproto.DestroyNotifyEvent) {
	if !d.lock() {
		return
	}
	defer d.mu.Unlock()

	if d.sess.Unmanage(ev.Window) {
		d.logger.Debug("destroy", "window", ev.Window)
	}
}

// Status implements ipc.Backend.
func (d *Daemon) Status() ipc.StatusData {
	cfg := d.cfg.Load()
	d.mu.Lock()
	defer d.mu.Unlock()

	return ipc.StatusData{
		Display:      cfg.Display,
		Locale:       d.sess.Codec.Locale().Codeset,
		DockLayer:    cfg.DockLayer,
		DockAppClass: d.sess.Manager.Settings().DockAppClass,
		ManagedCount: d.sess.Registry.Len(),
		ClientCount:  d.sess.Clients.Len(),
		DockAppCount: len(d.sess.Docks.Apps()),
	}
}

// Windows implements ipc.Backend.
func (d *Daemon) Windows() []ipc.WindowInfo {
	entries := d.sess.Registry.Snapshot()
	out := make([]ipc.WindowInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, d.describe(e.ID, e.Window))
	}
	return out
}

// Find implements ipc.Backend.
func (d *Daemon) Find(id uint32) (ipc.WindowInfo, bool) {
	w, ok := d.sess.Registry.Find(xproto.Window(id))
	if !ok {
		return ipc.WindowInfo{}, false
	}
	return d.describe(xproto.Window(id), w), true
}

// Rescan implements ipc.Backend.
func (d *Daemon) Rescan() (ipc.RescanData, error) {
	if !d.lock() {
		return ipc.RescanData{}, fmt.Errorf("daemon is shutting down")
	}
	defer d.mu.Unlock()

	before := d.sess.Registry.Len()
	d.sess.Manager.ManageAll()
	after := d.sess.Registry.Len()
	d.logger.Info("rescan", "before", before, "after", after)
	return ipc.RescanData{Before: before, After: after}, nil
}

func (d *Daemon) describe(id xproto.Window, w registry.Window) ipc.WindowInfo {
	info := ipc.WindowInfo{
		ID:   uint32(id),
		Kind: w.Kind().String(),
		Top:  uint32(d.sess.Registry.Top(w)),
	}
	if w.Kind() != registry.KindPrompt {
		info.Layer = d.sess.Registry.Layer(w).String()
	}
	if c, ok := w.(*registry.Client); ok {
		info.Title = c.Title
		info.Class = c.Class
	}
	return info
}

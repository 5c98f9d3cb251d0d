// Package session wires the atom table, property codec, window registry,
// collaborators and adoption orchestrator for one X connection.
//
// A Session replaces process-wide state: everything that would otherwise be
// global hangs off it, so tests can run several against separate fake
// servers.
package session

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/client"
	"github.com/1broseidon/xadopt/internal/dock"
	"github.com/1broseidon/xadopt/internal/manage"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
)

// Conn is everything the session's components need from the connection.
type Conn interface {
	atoms.Interner
	prop.Conn
	manage.Display
	manage.Grabber
	client.Display
	dock.Display
}

// Settings are the reloadable knobs.
type Settings struct {
	DockLayer    registry.Layer
	DockAppClass string
}

// Session owns the adoption state for one connection.
type Session struct {
	Atoms    *atoms.Table
	Codec    *prop.Codec
	Registry *registry.Registry
	Clients  *client.Set
	Docks    *dock.Dock
	Manager  *manage.Manager

	conn   Conn
	logger *slog.Logger
}

// New builds a session. Nothing talks to the server until Startup.
func New(conn Conn, locale prop.Locale, s Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	table := atoms.NewTable()
	codec := prop.New(conn, table, locale)
	reg := registry.New(s.DockLayer, logger.With("component", "registry"))

	clients := client.NewSet(conn, codec, table, reg, logger.With("component", "client"))
	docks := dock.New(conn, reg, logger.With("component", "dock"))

	mgr := manage.New(manage.Deps{
		Display:  conn,
		Grabber:  conn,
		Codec:    codec,
		Atoms:    table,
		Registry: reg,
		Docks:    docks,
		Clients:  clients,
		Logger:   logger.With("component", "manage"),
	}, manage.Settings{DockAppClass: s.DockAppClass})

	return &Session{
		Atoms:    table,
		Codec:    codec,
		Registry: reg,
		Clients:  clients,
		Docks:    docks,
		Manager:  mgr,
		conn:     conn,
		logger:   logger,
	}
}

// Startup interns the atom table on first use and applies s. With reconfig
// set only the settings change.
func (s *Session) Startup(reconfig bool, st Settings) error {
	if !reconfig {
		if err := s.Atoms.Startup(s.conn); err != nil {
			return fmt.Errorf("session startup: %w", err)
		}
		s.logger.Debug("atoms interned", "count", atoms.NumIDs)
	}
	s.Apply(st)
	return nil
}

// Apply swaps in new settings. It is safe to call from any goroutine.
func (s *Session) Apply(st Settings) {
	s.Registry.SetDockLayer(st.DockLayer)
	s.Manager.UpdateSettings(manage.Settings{DockAppClass: st.DockAppClass})
}

// Shutdown releases every adopted window and clears the registry. A reconfig
// shutdown keeps everything in place.
func (s *Session) Shutdown(reconfig bool) {
	if reconfig {
		return
	}
	s.Manager.UnmanageAll()
	s.Registry.Reset()
}

// Unmanage releases win from whichever collaborator holds it.
func (s *Session) Unmanage(win xproto.Window) bool {
	return s.Docks.Unmanage(win) || s.Clients.Unmanage(win)
}

// Withdraw handles a client unmapping its own window: dock apps are released,
// clients are released and marked withdrawn.
func (s *Session) Withdraw(win xproto.Window) bool {
	return s.Docks.Unmapped(win) || s.Clients.Withdraw(win)
}

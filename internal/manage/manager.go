// Package manage decides whether and how to adopt top-level windows.
//
// Adoption races with the server and with the window's own client: a window
// can vanish between being listed and being examined. Manage holds a server
// grab while it classifies a window and hands the window, with the grab still
// held, to exactly one collaborator, which then owns releasing it.
package manage

import (
	"log/slog"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
)

// DefaultDockAppClass is the WM_CLASS class that marks a dock app which does
// not set the withdrawn hint.
const DefaultDockAppClass = "DockApp"

// Display is the window-tree view the orchestrator needs.
type Display interface {
	Root() xproto.Window
	Children(parent xproto.Window) ([]xproto.Window, error)
	Attributes(win xproto.Window) (*xproto.GetWindowAttributesReply, error)
	Hints(win xproto.Window) (*icccm.Hints, error)
	// QueuedUnmap reports whether an UnmapNotify or DestroyNotify for win
	// has been read from the connection but not yet dispatched.
	QueuedUnmap(win xproto.Window) bool
}

// Grabber acquires and releases the server grab. Calls nest.
type Grabber interface {
	Grab(acquire bool)
}

// DockManager adopts dock apps. Manage is called with the grab held and must
// release it.
type DockManager interface {
	Manage(icon, win xproto.Window)
	UnmanageAll()
}

// ClientManager adopts ordinary top-level windows. Manage is called with the
// grab held and must release it.
type ClientManager interface {
	Manage(win xproto.Window, prompt *registry.Prompt)
	UnmanageAll()
}

// Settings are the reloadable parts of the orchestrator.
type Settings struct {
	DockAppClass string
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Display  Display
	Grabber  Grabber
	Codec    *prop.Codec
	Atoms    *atoms.Table
	Registry *registry.Registry
	Docks    DockManager
	Clients  ClientManager
	Logger   *slog.Logger
}

// Outcome is how a Manage call ended.
type Outcome int

const (
	// Aborted means the window went away before it could be classified.
	Aborted Outcome = iota
	// Declined means the window is not one to adopt.
	Declined
	// Dock means the window went to the dock collaborator.
	Dock
	// Client means the window went to the client collaborator.
	Client
)

func (o Outcome) String() string {
	switch o {
	case Aborted:
		return "aborted"
	case Declined:
		return "declined"
	case Dock:
		return "dock"
	case Client:
		return "client"
	}
	return "unknown"
}

// Manager adopts windows.
type Manager struct {
	Deps
	settings atomic.Pointer[Settings]
}

// New returns a Manager. A zero DockAppClass selects DefaultDockAppClass.
func New(deps Deps, s Settings) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	m := &Manager{Deps: deps}
	m.UpdateSettings(s)
	return m
}

// UpdateSettings swaps in new settings. It is safe to call from any goroutine.
func (m *Manager) UpdateSettings(s Settings) {
	if s.DockAppClass == "" {
		s.DockAppClass = DefaultDockAppClass
	}
	m.settings.Store(&s)
}

// Settings returns the active settings.
func (m *Manager) Settings() Settings {
	return *m.settings.Load()
}

// ManageAll adopts every eligible child of the root. Windows that serve as
// another window's icon are left for their owner's dock adoption.
func (m *Manager) ManageAll() {
	children, err := m.Display.Children(m.Display.Root())
	if err != nil {
		m.Logger.Debug("failed to list root children", "err", err)
		children = nil
	}

	icons := make(map[xproto.Window]bool)
	for _, win := range children {
		if icons[win] {
			continue
		}
		h, err := m.Display.Hints(win)
		if err != nil {
			continue
		}
		if h.Flags&icccm.HintIconWindow != 0 && h.IconWindow != 0 && h.IconWindow != win {
			icons[h.IconWindow] = true
		}
	}

	for _, win := range children {
		if icons[win] {
			continue
		}
		if _, tracked := m.Registry.Find(win); tracked {
			continue
		}
		attrs, err := m.Display.Attributes(win)
		if err != nil || attrs.MapState == xproto.MapStateUnmapped {
			continue
		}
		m.Manage(win)
	}
}

// Manage classifies win and dispatches it to one collaborator. The grab is
// released exactly once, here on the Aborted and Declined paths and by the
// collaborator otherwise.
func (m *Manager) Manage(win xproto.Window) Outcome {
	m.Grabber.Grab(true)

	if m.Display.QueuedUnmap(win) {
		m.Grabber.Grab(false)
		m.Logger.Debug("window gone before manage", "window", win)
		return Aborted
	}

	attrs, err := m.Display.Attributes(win)
	if err != nil {
		m.Grabber.Grab(false)
		m.Logger.Debug("window gone before manage", "window", win, "err", err)
		return Aborted
	}

	if attrs.OverrideRedirect {
		m.Grabber.Grab(false)
		return Declined
	}

	if icon, ok := m.dockApp(win); ok {
		m.Logger.Debug("managing dock app", "window", win, "icon", icon)
		m.Docks.Manage(icon, win)
		return Dock
	}

	m.Clients.Manage(win, nil)
	return Client
}

// dockApp reports whether win is a dock app and which window holds its icon.
// The withdrawn initial state decides on its own; the class sentinel is only
// consulted when it is absent.
func (m *Manager) dockApp(win xproto.Window) (xproto.Window, bool) {
	if h, err := m.Display.Hints(win); err == nil &&
		h.Flags&icccm.HintState != 0 && h.InitialState == icccm.StateWithdrawn {
		if h.Flags&icccm.HintIconWindow != 0 && h.IconWindow != 0 {
			return h.IconWindow, true
		}
		return win, true
	}

	class, ok := m.Codec.GetArrayText(win, m.Atoms.Atom(atoms.WMClass), prop.TextStringNoCC, 2)
	if ok && len(class) == 2 && class[1].Value == m.Settings().DockAppClass {
		return win, true
	}
	return 0, false
}

// UnmanageAll releases every adopted window, docks first. It is safe to call
// when nothing is held.
func (m *Manager) UnmanageAll() {
	m.Docks.UnmanageAll()
	m.Clients.UnmanageAll()
}

package session

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
	"github.com/1broseidon/xadopt/internal/xtest"
)

const (
	clientWin xproto.Window = 0x400001
	dockWin   xproto.Window = 0x400010
	dockIcon  xproto.Window = 0x400011
)

func newSession(t *testing.T) (*Session, *xtest.Server) {
	t.Helper()
	srv := xtest.NewServer()
	locale, err := prop.NewLocale("UTF-8")
	if err != nil {
		t.Fatalf("NewLocale: %v", err)
	}
	s := New(srv, locale, Settings{DockLayer: registry.LayerAbove, DockAppClass: "DockApp"}, nil)
	if err := s.Startup(false, Settings{DockLayer: registry.LayerAbove, DockAppClass: "DockApp"}); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	return s, srv
}

func populate(srv *xtest.Server) {
	srv.AddWindow(clientWin, nil)
	srv.AddWindow(dockWin, &icccm.Hints{
		Flags:        icccm.HintState | icccm.HintIconWindow,
		InitialState: icccm.StateWithdrawn,
		IconWindow:   dockIcon,
	})
}

func TestStartup_InternsOnce(t *testing.T) {
	s, srv := newSession(t)

	if !s.Atoms.Started() {
		t.Fatalf("atom table not started")
	}
	before := s.Atoms.Atom(atoms.NetClientList)
	if before != srv.Intern("_NET_CLIENT_LIST") {
		t.Fatalf("_NET_CLIENT_LIST = %d, server has %d", before, srv.Intern("_NET_CLIENT_LIST"))
	}

	if err := s.Startup(true, Settings{DockLayer: registry.LayerBelow, DockAppClass: "Wharf"}); err != nil {
		t.Fatalf("reconfig Startup: %v", err)
	}
	if s.Atoms.Atom(atoms.NetClientList) != before {
		t.Fatalf("atoms changed on reconfig")
	}
	if got := s.Manager.Settings().DockAppClass; got != "Wharf" {
		t.Fatalf("DockAppClass = %q, want Wharf", got)
	}
}

func TestManageAllThenShutdown(t *testing.T) {
	s, srv := newSession(t)
	populate(srv)

	s.Manager.ManageAll()

	if srv.GrabDepth != 0 {
		t.Fatalf("grab depth %d after ManageAll", srv.GrabDepth)
	}
	if s.Clients.Len() != 1 || len(s.Docks.Apps()) != 1 {
		t.Fatalf("clients=%d dock apps=%d", s.Clients.Len(), len(s.Docks.Apps()))
	}
	// client, dock frame, dock main window, dock icon
	if s.Registry.Len() != 4 {
		t.Fatalf("registry holds %d entries, want 4", s.Registry.Len())
	}

	w, ok := s.Registry.Find(dockIcon)
	if !ok || s.Registry.Layer(w) != registry.LayerAbove {
		t.Fatalf("dock icon not registered at the dock layer")
	}
	s.Apply(Settings{DockLayer: registry.LayerBelow, DockAppClass: "DockApp"})
	if s.Registry.Layer(w) != registry.LayerBelow {
		t.Fatalf("dock layer not reapplied: %v", s.Registry.Layer(w))
	}

	s.Shutdown(true)
	if s.Registry.Len() != 4 {
		t.Fatalf("reconfig shutdown dropped entries: %d left", s.Registry.Len())
	}

	s.Shutdown(false)
	if s.Registry.Len() != 0 || s.Clients.Len() != 0 || len(s.Docks.Apps()) != 0 {
		t.Fatalf("shutdown left registry=%d clients=%d docks=%d",
			s.Registry.Len(), s.Clients.Len(), len(s.Docks.Apps()))
	}
	if len(srv.SaveSet) != 0 {
		t.Fatalf("save-set not emptied: %v", srv.SaveSet)
	}
	if srv.Parents[dockIcon] != srv.Root() {
		t.Fatalf("dock icon not returned to the root")
	}
}

func TestUnmanageAndWithdraw(t *testing.T) {
	s, srv := newSession(t)
	populate(srv)
	s.Manager.ManageAll()

	if !s.Unmanage(dockWin) {
		t.Fatalf("Unmanage(dock main window) = false")
	}
	if _, ok := s.Registry.Find(dockIcon); ok {
		t.Fatalf("dock icon still registered")
	}

	if !s.Withdraw(clientWin) {
		t.Fatalf("Withdraw(client) = false")
	}
	state, ok := s.Codec.GetArray32(clientWin, s.Atoms.Atom(atoms.WMState), s.Atoms.Atom(atoms.WMState))
	if !ok || state[0] != icccm.StateWithdrawn {
		t.Fatalf("WM_STATE = %v, %v", state, ok)
	}

	if s.Unmanage(clientWin) || s.Withdraw(0xdead) {
		t.Fatalf("released windows should not be found again")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	for _, name := range []string{"first", "second"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, srv := newSession(t)
			populate(srv)
			s.Manager.ManageAll()
			if s.Registry.Len() != 4 {
				t.Fatalf("registry holds %d entries, want 4", s.Registry.Len())
			}
			s.Shutdown(false)
		})
	}
}

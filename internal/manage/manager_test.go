package manage

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
	"github.com/1broseidon/xadopt/internal/xtest"
)

type dockCall struct{ icon, win xproto.Window }

type fakeDocks struct {
	grab         Grabber
	calls        []dockCall
	unmanageAlls int
	order        *[]string
}

func (d *fakeDocks) Manage(icon, win xproto.Window) {
	d.calls = append(d.calls, dockCall{icon, win})
	d.grab.Grab(false)
}

func (d *fakeDocks) UnmanageAll() {
	d.unmanageAlls++
	if d.order != nil {
		*d.order = append(*d.order, "docks")
	}
}

type fakeClients struct {
	grab         Grabber
	calls        []xproto.Window
	unmanageAlls int
	order        *[]string
}

func (c *fakeClients) Manage(win xproto.Window, prompt *registry.Prompt) {
	c.calls = append(c.calls, win)
	c.grab.Grab(false)
}

func (c *fakeClients) UnmanageAll() {
	c.unmanageAlls++
	if c.order != nil {
		*c.order = append(*c.order, "clients")
	}
}

type fixture struct {
	srv     *xtest.Server
	tbl     *atoms.Table
	reg     *registry.Registry
	docks   *fakeDocks
	clients *fakeClients
	m       *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := xtest.NewServer()
	tbl := atoms.NewTable()
	if err := tbl.Startup(srv); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	loc, err := prop.NewLocale("UTF-8")
	if err != nil {
		t.Fatalf("NewLocale: %v", err)
	}
	f := &fixture{
		srv:     srv,
		tbl:     tbl,
		reg:     registry.New(registry.LayerAbove, nil),
		docks:   &fakeDocks{grab: srv},
		clients: &fakeClients{grab: srv},
	}
	f.m = New(Deps{
		Display:  srv,
		Grabber:  srv,
		Codec:    prop.New(srv, tbl, loc),
		Atoms:    tbl,
		Registry: f.reg,
		Docks:    f.docks,
		Clients:  f.clients,
	}, Settings{})
	return f
}

func (f *fixture) setClass(win xproto.Window, instance, class string) {
	f.srv.SetProperty(win, f.tbl.Atom(atoms.WMClass), f.tbl.Atom(atoms.String), 8,
		[]byte(instance+"\x00"+class+"\x00"))
}

func (f *fixture) assertGrabReleased(t *testing.T, calls int) {
	t.Helper()
	if f.srv.GrabDepth != 0 {
		t.Fatalf("grab depth = %d, want 0", f.srv.GrabDepth)
	}
	if f.srv.GrabCalls != calls || f.srv.UngrabCalls != calls {
		t.Fatalf("grab/ungrab calls = %d/%d, want %d/%d", f.srv.GrabCalls, f.srv.UngrabCalls, calls, calls)
	}
}

func TestManage_QueuedUnmapAborts(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x100, nil)
	f.srv.QueueUnmap(0x100)

	if got := f.m.Manage(0x100); got != Aborted {
		t.Fatalf("Manage = %v, want aborted", got)
	}
	if len(f.docks.calls) != 0 || len(f.clients.calls) != 0 {
		t.Fatalf("collaborators invoked on abort: docks=%v clients=%v", f.docks.calls, f.clients.calls)
	}
	f.assertGrabReleased(t, 1)
}

func TestManage_VanishedWindowAborts(t *testing.T) {
	f := newFixture(t)

	if got := f.m.Manage(0x200); got != Aborted {
		t.Fatalf("Manage = %v, want aborted", got)
	}
	if len(f.docks.calls) != 0 || len(f.clients.calls) != 0 {
		t.Fatalf("collaborators invoked on abort")
	}
	f.assertGrabReleased(t, 1)
}

func TestManage_OverrideRedirectDeclined(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x300, nil)
	f.srv.SetAttributes(0x300, &xproto.GetWindowAttributesReply{
		MapState:         xproto.MapStateViewable,
		OverrideRedirect: true,
	})

	if got := f.m.Manage(0x300); got != Declined {
		t.Fatalf("Manage = %v, want declined", got)
	}
	if len(f.docks.calls) != 0 || len(f.clients.calls) != 0 {
		t.Fatalf("collaborators invoked for an override-redirect window")
	}
	f.assertGrabReleased(t, 1)
}

func TestManage_Classification(t *testing.T) {
	tests := []struct {
		name     string
		hints    *icccm.Hints
		class    string
		settings Settings
		want     Outcome
		wantIcon xproto.Window
	}{
		{
			name: "withdrawn with icon window",
			hints: &icccm.Hints{
				Flags:        icccm.HintState | icccm.HintIconWindow,
				InitialState: icccm.StateWithdrawn,
				IconWindow:   0x501,
			},
			class:    "xclock",
			want:     Dock,
			wantIcon: 0x501,
		},
		{
			name: "withdrawn without icon window",
			hints: &icccm.Hints{
				Flags:        icccm.HintState,
				InitialState: icccm.StateWithdrawn,
			},
			class:    "xclock",
			want:     Dock,
			wantIcon: 0x500,
		},
		{
			name:     "sentinel class",
			class:    "DockApp",
			want:     Dock,
			wantIcon: 0x500,
		},
		{
			name:     "sentinel class followed by control byte",
			class:    "DockApp\x01junk",
			want:     Dock,
			wantIcon: 0x500,
		},
		{
			name:     "configured sentinel class",
			class:    "WMDock",
			settings: Settings{DockAppClass: "WMDock"},
			want:     Dock,
			wantIcon: 0x500,
		},
		{
			name:     "default sentinel replaced by configuration",
			class:    "DockApp",
			settings: Settings{DockAppClass: "WMDock"},
			want:     Client,
		},
		{
			name: "normal initial state",
			hints: &icccm.Hints{
				Flags:        icccm.HintState | icccm.HintIconWindow,
				InitialState: icccm.StateNormal,
				IconWindow:   0x501,
			},
			class: "XTerm",
			want:  Client,
		},
		{
			name: "neither",
			want: Client,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.m.UpdateSettings(tt.settings)
			f.srv.AddWindow(0x500, tt.hints)
			if tt.class != "" {
				f.setClass(0x500, "instance", tt.class)
			}

			if got := f.m.Manage(0x500); got != tt.want {
				t.Fatalf("Manage = %v, want %v", got, tt.want)
			}
			switch tt.want {
			case Dock:
				if len(f.docks.calls) != 1 || len(f.clients.calls) != 0 {
					t.Fatalf("dock calls = %v, client calls = %v", f.docks.calls, f.clients.calls)
				}
				if want := (dockCall{tt.wantIcon, 0x500}); f.docks.calls[0] != want {
					t.Fatalf("dock call = %+v, want %+v", f.docks.calls[0], want)
				}
			case Client:
				if len(f.clients.calls) != 1 || f.clients.calls[0] != 0x500 || len(f.docks.calls) != 0 {
					t.Fatalf("dock calls = %v, client calls = %v", f.docks.calls, f.clients.calls)
				}
			}
			f.assertGrabReleased(t, 1)
		})
	}
}

func TestManageAll_SkipsIconWindows(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0xa, &icccm.Hints{Flags: icccm.HintIconWindow, IconWindow: 0xb})
	f.srv.AddWindow(0xb, nil)
	f.srv.AddWindow(0xc, nil)

	f.m.ManageAll()

	want := []xproto.Window{0xa, 0xc}
	if len(f.clients.calls) != len(want) {
		t.Fatalf("managed %v, want %v", f.clients.calls, want)
	}
	for i := range want {
		if f.clients.calls[i] != want[i] {
			t.Fatalf("managed %v, want %v", f.clients.calls, want)
		}
	}
	f.assertGrabReleased(t, 2)
}

func TestManageAll_IconOfIconIsManaged(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0xa, &icccm.Hints{Flags: icccm.HintIconWindow, IconWindow: 0xb})
	f.srv.AddWindow(0xb, &icccm.Hints{Flags: icccm.HintIconWindow, IconWindow: 0xc})
	f.srv.AddWindow(0xc, nil)

	f.m.ManageAll()

	// 0xb is already an icon, so its own hints are never consulted.
	want := []xproto.Window{0xa, 0xc}
	if len(f.clients.calls) != len(want) || f.clients.calls[0] != want[0] || f.clients.calls[1] != want[1] {
		t.Fatalf("managed %v, want %v", f.clients.calls, want)
	}
}

func TestManageAll_SelfIconIsNotSkipped(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0xa, &icccm.Hints{Flags: icccm.HintIconWindow, IconWindow: 0xa})

	f.m.ManageAll()

	if len(f.clients.calls) != 1 || f.clients.calls[0] != 0xa {
		t.Fatalf("managed %v, want [0xa]", f.clients.calls)
	}
}

func TestManageAll_SkipsTrackedAndUnmapped(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x1, nil)
	f.srv.AddWindow(0x2, nil)
	f.srv.SetAttributes(0x2, &xproto.GetWindowAttributesReply{MapState: xproto.MapStateUnmapped})
	f.srv.AddWindow(0x3, nil)
	f.reg.Add(0x3, &registry.Internal{Window: 0x3})

	f.m.ManageAll()

	if len(f.clients.calls) != 1 || f.clients.calls[0] != 0x1 {
		t.Fatalf("managed %v, want [0x1]", f.clients.calls)
	}
}

func TestManageAll_TreeFailureIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x1, nil)
	f.srv.TreeErr = errors.New("connection reset")

	f.m.ManageAll()

	if len(f.clients.calls) != 0 || f.srv.GrabCalls != 0 {
		t.Fatalf("nothing should be managed when the tree query fails")
	}
}

func TestUnmanageAll_DocksFirst(t *testing.T) {
	f := newFixture(t)
	var order []string
	f.docks.order = &order
	f.clients.order = &order

	f.m.UnmanageAll()
	f.m.UnmanageAll()

	if len(order) != 4 || order[0] != "docks" || order[1] != "clients" {
		t.Fatalf("order = %v", order)
	}
}

func TestSettings_DefaultClass(t *testing.T) {
	f := newFixture(t)
	if got := f.m.Settings().DockAppClass; got != DefaultDockAppClass {
		t.Fatalf("DockAppClass = %q, want %q", got, DefaultDockAppClass)
	}
	f.m.UpdateSettings(Settings{DockAppClass: "Foo"})
	if got := f.m.Settings().DockAppClass; got != "Foo" {
		t.Fatalf("DockAppClass = %q, want Foo", got)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Aborted: "aborted", Declined: "declined", Dock: "dock", Client: "client", Outcome(9): "unknown"} {
		if o.String() != want {
			t.Fatalf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}

package client

import (
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
	"github.com/1broseidon/xadopt/internal/xtest"
)

type fixture struct {
	srv   *xtest.Server
	tbl   *atoms.Table
	codec *prop.Codec
	reg   *registry.Registry
	set   *Set
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
	codec := prop.New(srv, tbl, loc)
	reg := registry.New(registry.LayerAbove, nil)
	return &fixture{srv: srv, tbl: tbl, codec: codec, reg: reg, set: NewSet(srv, codec, tbl, reg, nil)}
}

// manage mimics the orchestrator, which hands over the window with the grab
// held.
func (f *fixture) manage(win xproto.Window) {
	f.srv.Grab(true)
	f.set.Manage(win, nil)
}

func (f *fixture) clientList(t *testing.T) []uint32 {
	t.Helper()
	p, ok := f.srv.Property(f.srv.Root(), f.tbl.Atom(atoms.NetClientList))
	if !ok {
		t.Fatalf("_NET_CLIENT_LIST not published")
	}
	out := make([]uint32, len(p.Data)/4)
	for i := range out {
		out[i] = xgb.Get32(p.Data[i*4:])
	}
	return out
}

func TestManage_PublishesAndRegisters(t *testing.T) {
	f := newFixture(t)
	const win xproto.Window = 0x400001
	f.srv.AddWindow(win, nil)
	f.codec.SetText(win, f.tbl.Atom(atoms.NetWMName), "café notes")
	f.srv.SetProperty(win, f.tbl.Atom(atoms.WMClass), f.tbl.Atom(atoms.String), 8, []byte("gvim\x00Gvim\x00"))

	f.manage(win)

	if f.srv.GrabDepth != 0 {
		t.Fatalf("grab not released")
	}
	w, ok := f.reg.Find(win)
	if !ok {
		t.Fatalf("client not registered")
	}
	c, ok := w.(*registry.Client)
	if !ok {
		t.Fatalf("registered %T, want *registry.Client", w)
	}
	if c.Title != "café notes" || c.Class != "Gvim" || c.Layer != registry.LayerNormal {
		t.Fatalf("client = %+v", c)
	}
	if f.reg.Top(c) != win {
		t.Fatalf("Top = 0x%x, want 0x%x", f.reg.Top(c), win)
	}

	if !f.srv.SaveSet[win] || !f.srv.Mapped[win] || f.srv.Selected[win] == 0 {
		t.Fatalf("save-set=%v mapped=%v mask=0x%x", f.srv.SaveSet[win], f.srv.Mapped[win], f.srv.Selected[win])
	}

	vis, ok := f.codec.GetText(win, f.tbl.Atom(atoms.NetWMVisibleName), prop.TextUTF8)
	if !ok || vis.Value != "café notes" {
		t.Fatalf("_NET_WM_VISIBLE_NAME = %q, %v", vis.Value, ok)
	}
	class, ok := f.codec.GetText(win, f.tbl.Atom(atoms.OBAppClass), prop.TextUTF8)
	if !ok || class.Value != "Gvim" {
		t.Fatalf("_OB_APP_CLASS = %q, %v", class.Value, ok)
	}
	state, ok := f.codec.GetArray32(win, f.tbl.Atom(atoms.WMState), f.tbl.Atom(atoms.WMState))
	if !ok || len(state) != 2 || state[0] != stateNormal {
		t.Fatalf("WM_STATE = %v, %v", state, ok)
	}
	if list := f.clientList(t); len(list) != 1 || list[0] != uint32(win) {
		t.Fatalf("_NET_CLIENT_LIST = %v", list)
	}
}

func TestManage_ClassStopsAtControlByte(t *testing.T) {
	f := newFixture(t)
	const win xproto.Window = 0x400002
	f.srv.AddWindow(win, nil)
	f.srv.SetProperty(win, f.tbl.Atom(atoms.WMClass), f.tbl.Atom(atoms.String), 8, []byte("gvim\x00Gvim\x01junk\x00"))

	f.manage(win)

	w, ok := f.reg.Find(win)
	if !ok {
		t.Fatalf("client not registered")
	}
	if c := w.(*registry.Client); c.Class != "Gvim" {
		t.Fatalf("class = %q, want \"Gvim\"", c.Class)
	}
}

func TestManage_TitleFallsBackToWMName(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x10, nil)
	f.srv.SetProperty(0x10, f.tbl.Atom(atoms.WMName), f.tbl.Atom(atoms.String), 8, []byte("xterm"))

	f.manage(0x10)

	w, _ := f.reg.Find(0x10)
	if got := w.(*registry.Client).Title; got != "xterm" {
		t.Fatalf("Title = %q, want xterm", got)
	}
}

func TestManage_LayerFromState(t *testing.T) {
	tests := []struct {
		name   string
		states []atoms.ID
		want   registry.Layer
	}{
		{"none", nil, registry.LayerNormal},
		{"above", []atoms.ID{atoms.NetWMStateAbove}, registry.LayerAbove},
		{"below", []atoms.ID{atoms.NetWMStateBelow}, registry.LayerBelow},
		{"above wins over below", []atoms.ID{atoms.NetWMStateBelow, atoms.NetWMStateAbove}, registry.LayerAbove},
		{"fullscreen", []atoms.ID{atoms.NetWMStateAbove, atoms.NetWMStateFullscreen}, registry.LayerFullscreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.srv.AddWindow(0x20, nil)
			if len(tt.states) > 0 {
				vals := make([]uint32, len(tt.states))
				for i, id := range tt.states {
					vals[i] = uint32(f.tbl.Atom(id))
				}
				f.codec.SetArray32(0x20, f.tbl.Atom(atoms.NetWMState), f.tbl.Atom(atoms.Atom), vals)
			}

			f.manage(0x20)

			w, _ := f.reg.Find(0x20)
			if got := f.reg.Layer(w); got != tt.want {
				t.Fatalf("Layer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManage_AlreadyTrackedIsDeclined(t *testing.T) {
	f := newFixture(t)
	internal := &registry.Internal{Window: 0x30}
	f.reg.Add(0x30, internal)

	f.manage(0x30)

	if f.srv.GrabDepth != 0 {
		t.Fatalf("grab not released")
	}
	if w, _ := f.reg.Find(0x30); w != registry.Window(internal) {
		t.Fatalf("tracked record replaced by %T", w)
	}
	if f.set.Len() != 0 {
		t.Fatalf("set holds %d clients, want 0", f.set.Len())
	}
}

func TestUnmanage(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x1, nil)
	f.srv.AddWindow(0x2, nil)
	f.manage(0x1)
	f.manage(0x2)

	if !f.set.Unmanage(0x1) {
		t.Fatalf("Unmanage(0x1) = false")
	}
	if f.set.Unmanage(0x1) {
		t.Fatalf("second Unmanage(0x1) = true")
	}
	if _, ok := f.reg.Find(0x1); ok {
		t.Fatalf("0x1 still registered")
	}
	if f.srv.SaveSet[0x1] {
		t.Fatalf("0x1 still in the save-set")
	}
	if _, ok := f.srv.Property(0x1, f.tbl.Atom(atoms.NetWMVisibleName)); ok {
		t.Fatalf("_NET_WM_VISIBLE_NAME not erased")
	}
	if list := f.clientList(t); len(list) != 1 || list[0] != 0x2 {
		t.Fatalf("_NET_CLIENT_LIST = %v, want [2]", list)
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.srv.AddWindow(0x5, nil)
	f.manage(0x5)

	if !f.set.Withdraw(0x5) {
		t.Fatalf("Withdraw = false")
	}
	state, ok := f.codec.GetArray32(0x5, f.tbl.Atom(atoms.WMState), f.tbl.Atom(atoms.WMState))
	if !ok || state[0] != stateWithdrawn {
		t.Fatalf("WM_STATE = %v, %v; want withdrawn", state, ok)
	}
	if f.set.Withdraw(0x6) {
		t.Fatalf("Withdraw of an unknown window = true")
	}
}

func TestUnmanageAll(t *testing.T) {
	f := newFixture(t)
	f.set.UnmanageAll()

	for _, w := range []xproto.Window{0x1, 0x2, 0x3} {
		f.srv.AddWindow(w, nil)
		f.manage(w)
	}
	f.set.UnmanageAll()

	if f.set.Len() != 0 || f.reg.Len() != 0 {
		t.Fatalf("set=%d registry=%d after UnmanageAll", f.set.Len(), f.reg.Len())
	}
	if list := f.clientList(t); len(list) != 0 {
		t.Fatalf("_NET_CLIENT_LIST = %v, want empty", list)
	}
}

package dock

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/registry"
	"github.com/1broseidon/xadopt/internal/xtest"
)

func newDock(t *testing.T) (*Dock, *xtest.Server, *registry.Registry) {
	t.Helper()
	srv := xtest.NewServer()
	reg := registry.New(registry.LayerAbove, nil)
	return New(srv, reg, nil), srv, reg
}

func manage(srv *xtest.Server, d *Dock, icon, win xproto.Window) {
	srv.Grab(true)
	d.Manage(icon, win)
}

func TestManage_CreatesFrameAndRegisters(t *testing.T) {
	d, srv, reg := newDock(t)

	manage(srv, d, 0x11, 0x10)

	if srv.GrabDepth != 0 {
		t.Fatalf("grab not released")
	}
	if len(srv.Created) != 1 {
		t.Fatalf("created %d frames, want 1", len(srv.Created))
	}
	frame := srv.Created[0]
	if srv.Parents[0x11] != frame {
		t.Fatalf("icon parent = 0x%x, want frame 0x%x", srv.Parents[0x11], frame)
	}
	if !srv.Mapped[0x11] || !srv.Mapped[frame] || !srv.SaveSet[0x11] {
		t.Fatalf("icon mapped=%v frame mapped=%v save-set=%v", srv.Mapped[0x11], srv.Mapped[frame], srv.SaveSet[0x11])
	}

	for _, id := range []xproto.Window{frame, 0x10, 0x11} {
		w, ok := reg.Find(id)
		if !ok {
			t.Fatalf("0x%x not registered", id)
		}
		if w.Kind() != registry.KindDock {
			t.Fatalf("0x%x registered as %v", id, w.Kind())
		}
		if reg.Top(w) != frame {
			t.Fatalf("Top = 0x%x, want frame", reg.Top(w))
		}
		if reg.Layer(w) != registry.LayerAbove {
			t.Fatalf("Layer = %v, want configured dock layer", reg.Layer(w))
		}
	}
}

func TestManage_IconIsMainWindow(t *testing.T) {
	d, srv, reg := newDock(t)

	manage(srv, d, 0x20, 0x20)

	if reg.Len() != 2 {
		t.Fatalf("registry holds %d windows, want frame and app", reg.Len())
	}
	if apps := d.Apps(); len(apps) != 1 || apps[0] != (App{Icon: 0x20, Main: 0x20}) {
		t.Fatalf("Apps = %v", apps)
	}
}

func TestManage_Layout(t *testing.T) {
	d, srv, _ := newDock(t)

	manage(srv, d, 0x1, 0x1)
	manage(srv, d, 0x2, 0x2)
	manage(srv, d, 0x3, 0x3)

	if len(srv.Created) != 1 {
		t.Fatalf("created %d frames, want 1", len(srv.Created))
	}
	frame := srv.Created[0]
	if got := srv.Geometry[frame]; got.Width != 3*TileSize || got.Height != TileSize {
		t.Fatalf("frame geometry = %+v", got)
	}
	if got := srv.Geometry[0x3]; got.X != 2*TileSize {
		t.Fatalf("third app at x=%d, want %d", got.X, 2*TileSize)
	}

	d.Unmanage(0x1)
	if got := srv.Geometry[0x3]; got.X != TileSize {
		t.Fatalf("third app at x=%d after removal, want %d", got.X, TileSize)
	}
	if srv.GrabDepth != 0 {
		t.Fatalf("grab depth = %d", srv.GrabDepth)
	}
}

func TestManage_AlreadyHeld(t *testing.T) {
	d, srv, _ := newDock(t)
	manage(srv, d, 0x11, 0x10)

	manage(srv, d, 0x11, 0x10)

	if len(d.Apps()) != 1 {
		t.Fatalf("Apps = %v", d.Apps())
	}
	if srv.GrabDepth != 0 {
		t.Fatalf("grab not released")
	}
}

func TestUnmanage_ByEitherWindow(t *testing.T) {
	d, srv, reg := newDock(t)
	manage(srv, d, 0x11, 0x10)
	manage(srv, d, 0x21, 0x20)

	if !d.Unmanage(0x10) {
		t.Fatalf("Unmanage by main window = false")
	}
	if !d.Unmanage(0x21) {
		t.Fatalf("Unmanage by icon window = false")
	}
	if d.Unmanage(0x21) {
		t.Fatalf("second Unmanage = true")
	}
	if srv.Parents[0x11] != srv.Root() {
		t.Fatalf("icon not returned to the root")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry holds %d windows after the last app left", reg.Len())
	}
	if len(srv.Created) != 1 || srv.Mapped[srv.Created[0]] {
		t.Fatalf("frame should be destroyed")
	}
}

func TestUnmanageAll(t *testing.T) {
	d, srv, reg := newDock(t)
	d.UnmanageAll()

	manage(srv, d, 0x1, 0x1)
	manage(srv, d, 0x3, 0x2)
	d.UnmanageAll()
	d.UnmanageAll()

	if len(d.Apps()) != 0 || reg.Len() != 0 {
		t.Fatalf("apps=%v registry=%d", d.Apps(), reg.Len())
	}

	manage(srv, d, 0x4, 0x4)
	if len(srv.Created) != 2 {
		t.Fatalf("a new frame should be created after UnmanageAll, created %v", srv.Created)
	}
}

func TestUnmapped_AbsorbsReparentUnmap(t *testing.T) {
	d, srv, reg := newDock(t)
	srv.AddWindow(0x31, nil)
	manage(srv, d, 0x31, 0x30)
	manage(srv, d, 0x41, 0x40)

	if !d.Unmapped(0x31) {
		t.Fatalf("Unmapped(mapped icon) = false")
	}
	if len(d.Apps()) != 2 {
		t.Fatalf("reparent unmap released the app: %v", d.Apps())
	}

	if !d.Unmapped(0x31) {
		t.Fatalf("second Unmapped = false")
	}
	if !d.Unmapped(0x41) {
		t.Fatalf("Unmapped(unmapped icon) = false")
	}
	if len(d.Apps()) != 0 || reg.Len() != 0 {
		t.Fatalf("apps=%v registry=%d", d.Apps(), reg.Len())
	}
	if d.Unmapped(0x99) {
		t.Fatalf("Unmapped(unknown) = true")
	}
}

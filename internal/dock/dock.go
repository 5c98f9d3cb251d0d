// Package dock is the default collaborator for dock apps: small withdrawn
// windows that expect to be swallowed into a strip along a screen edge.
package dock

import (
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/registry"
)

// TileSize is the edge of the square slot each app occupies.
const TileSize = 64

const appEventMask = xproto.EventMaskStructureNotify

// Display is the part of the connection the dock uses.
type Display interface {
	Root() xproto.Window
	Grab(acquire bool)
	Attributes(win xproto.Window) (*xproto.GetWindowAttributesReply, error)
	CreateWindow(parent xproto.Window) (xproto.Window, error)
	DestroyWindow(win xproto.Window)
	MoveResize(win xproto.Window, x, y, width, height int)
	Reparent(win, parent xproto.Window, x, y int16)
	Map(win xproto.Window)
	AddToSaveSet(win xproto.Window)
	RemoveFromSaveSet(win xproto.Window)
	SelectInput(win xproto.Window, mask uint32)
}

// App is one swallowed dock app.
type App struct {
	Icon xproto.Window
	Main xproto.Window

	// unmaps the server will send for our own reparent
	ignoreUnmaps int
}

// Dock lays out dock apps in a horizontal strip. It is used from the event
// loop only.
type Dock struct {
	display  Display
	registry *registry.Registry
	logger   *slog.Logger

	rec  *registry.Dock
	apps []App
}

// New returns an empty dock. The frame window is created with the first app.
func New(d Display, reg *registry.Registry, logger *slog.Logger) *Dock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dock{display: d, registry: reg, logger: logger}
}

// Manage swallows icon, which belongs to the app whose main window is win.
// It is called with the server grab held and releases it on every path.
func (d *Dock) Manage(icon, win xproto.Window) {
	defer d.display.Grab(false)

	if d.holds(icon) || d.holds(win) {
		return
	}
	if d.rec == nil {
		frame, err := d.display.CreateWindow(d.display.Root())
		if err != nil {
			d.logger.Warn("failed to create dock frame", "err", err)
			return
		}
		d.rec = &registry.Dock{Frame: frame}
		d.registry.Add(frame, d.rec)
	}

	app := App{Icon: icon, Main: win}
	if attrs, err := d.display.Attributes(icon); err == nil && attrs.MapState != xproto.MapStateUnmapped {
		app.ignoreUnmaps++
	}

	d.display.AddToSaveSet(icon)
	d.display.SelectInput(icon, appEventMask)
	d.display.Reparent(icon, d.rec.Frame, int16(len(d.apps)*TileSize), 0)
	d.display.Map(icon)

	d.registry.Add(icon, d.rec)
	if win != icon {
		d.registry.Add(win, d.rec)
	}
	d.apps = append(d.apps, app)
	d.layout()

	d.logger.Info("managed dock app", "window", win, "icon", icon)
}

// Unmanage releases the app owning win, which may be its icon or its main
// window. It reports false for a window the dock does not hold.
func (d *Dock) Unmanage(win xproto.Window) bool {
	i := slices.IndexFunc(d.apps, func(a App) bool { return a.Icon == win || a.Main == win })
	if i < 0 {
		return false
	}
	app := d.apps[i]
	d.apps = slices.Delete(d.apps, i, i+1)
	d.release(app)
	d.layout()
	return true
}

// Unmapped handles an UnmapNotify for win. The unmap caused by swallowing a
// mapped icon is absorbed; any other unmap releases the app. It reports
// whether the dock held win.
func (d *Dock) Unmapped(win xproto.Window) bool {
	i := slices.IndexFunc(d.apps, func(a App) bool { return a.Icon == win })
	if i >= 0 && d.apps[i].ignoreUnmaps > 0 {
		d.apps[i].ignoreUnmaps--
		return true
	}
	return d.Unmanage(win)
}

// UnmanageAll releases every app and destroys the frame.
func (d *Dock) UnmanageAll() {
	for len(d.apps) > 0 {
		app := d.apps[len(d.apps)-1]
		d.apps = d.apps[:len(d.apps)-1]
		d.release(app)
	}
	d.layout()
}

// Apps returns the swallowed apps in strip order.
func (d *Dock) Apps() []App {
	return slices.Clone(d.apps)
}

func (d *Dock) holds(win xproto.Window) bool {
	return slices.ContainsFunc(d.apps, func(a App) bool { return a.Icon == win || a.Main == win })
}

func (d *Dock) release(app App) {
	d.display.Reparent(app.Icon, d.display.Root(), 0, 0)
	d.display.RemoveFromSaveSet(app.Icon)
	d.registry.Remove(app.Icon)
	if app.Main != app.Icon {
		d.registry.Remove(app.Main)
	}
	d.logger.Info("unmanaged dock app", "window", app.Main, "icon", app.Icon)
}

// layout packs the apps left to right, and drops the frame once the strip is
// empty.
func (d *Dock) layout() {
	if d.rec == nil {
		return
	}
	if len(d.apps) == 0 {
		d.registry.Remove(d.rec.Frame)
		d.display.DestroyWindow(d.rec.Frame)
		d.rec = nil
		return
	}
	for i, app := range d.apps {
		d.display.MoveResize(app.Icon, i*TileSize, 0, TileSize, TileSize)
	}
	d.display.MoveResize(d.rec.Frame, 0, 0, len(d.apps)*TileSize, TileSize)
	d.display.Map(d.rec.Frame)
}

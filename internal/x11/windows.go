package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// RootEventMask is selected on the root by BecomeWM.
const RootEventMask = xproto.EventMaskSubstructureRedirect | xproto.EventMaskStructureNotify

// BecomeWM claims SubstructureRedirect on the root and advertises name
// through a _NET_SUPPORTING_WM_CHECK window.
func (c *Connection) BecomeWM(name string) error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.root,
		xproto.CwEventMask, []uint32{RootEventMask}).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrOtherWM
		}
		return fmt.Errorf("failed to select root events: %w", err)
	}

	check, err := xwindow.Create(c.XUtil, c.root)
	if err != nil {
		return fmt.Errorf("failed to create check window: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.root, check.Id); err != nil {
		return fmt.Errorf("failed to set supporting wm check: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check.Id, check.Id); err != nil {
		return fmt.Errorf("failed to set supporting wm check: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, check.Id, name); err != nil {
		return fmt.Errorf("failed to name check window: %w", err)
	}
	return nil
}

// Children returns the children of parent in stacking order, bottom first.
func (c *Connection) Children(parent xproto.Window) ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), parent).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree of 0x%x: %w", parent, err)
	}
	return tree.Children, nil
}

// Attributes returns the window attributes of win.
func (c *Connection) Attributes(win xproto.Window) (*xproto.GetWindowAttributesReply, error) {
	return xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
}

// Hints reads WM_HINTS from win.
func (c *Connection) Hints(win xproto.Window) (*icccm.Hints, error) {
	return icccm.WmHintsGet(c.XUtil, win)
}

// QueuedUnmap reports whether an UnmapNotify or DestroyNotify for win has
// already arrived. Pending events are pulled off the wire first; they stay
// queued for the event loop.
func (c *Connection) QueuedUnmap(win xproto.Window) bool {
	xevent.Read(c.XUtil, false)
	for _, ev := range xevent.Peek(c.XUtil) {
		switch e := ev.Event.(type) {
		case xproto.UnmapNotifyEvent:
			if e.Window == win {
				return true
			}
		case xproto.DestroyNotifyEvent:
			if e.Window == win {
				return true
			}
		}
	}
	return false
}

// AddToSaveSet keeps win alive if this client disconnects.
func (c *Connection) AddToSaveSet(win xproto.Window) {
	xproto.ChangeSaveSet(c.XUtil.Conn(), xproto.SetModeInsert, win)
}

// RemoveFromSaveSet undoes AddToSaveSet.
func (c *Connection) RemoveFromSaveSet(win xproto.Window) {
	xproto.ChangeSaveSet(c.XUtil.Conn(), xproto.SetModeDelete, win)
}

// SelectInput replaces this client's event mask on win.
func (c *Connection) SelectInput(win xproto.Window, mask uint32) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win, xproto.CwEventMask, []uint32{mask})
}

// Map maps win.
func (c *Connection) Map(win xproto.Window) {
	xproto.MapWindow(c.XUtil.Conn(), win)
}

// CreateWindow creates a 1x1 unmapped child of parent.
func (c *Connection) CreateWindow(parent xproto.Window) (xproto.Window, error) {
	win, err := xwindow.Create(c.XUtil, parent)
	if err != nil {
		return 0, err
	}
	return win.Id, nil
}

// DestroyWindow destroys win.
func (c *Connection) DestroyWindow(win xproto.Window) {
	xproto.DestroyWindow(c.XUtil.Conn(), win)
}

// MoveResize sets the geometry of win.
func (c *Connection) MoveResize(win xproto.Window, x, y, width, height int) {
	xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
}

// Reparent moves win under parent at (x, y).
func (c *Connection) Reparent(win, parent xproto.Window, x, y int16) {
	xproto.ReparentWindow(c.XUtil.Conn(), win, parent, x, y)
}

// Configure grants a ConfigureRequest as asked.
func (c *Connection) Configure(ev xproto.ConfigureRequestEvent) {
	var vals []uint32
	mask := ev.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(ev.X))
	}
	if mask&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(ev.Y))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		vals = append(vals, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(ev.StackMode))
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), ev.Window, mask, vals)
}

// Handlers are the root event callbacks installed by Connect.
type Handlers struct {
	MapRequest       func(xproto.MapRequestEvent)
	ConfigureRequest func(xproto.ConfigureRequestEvent)
	UnmapNotify      func(xproto.UnmapNotifyEvent)
	DestroyNotify    func(xproto.DestroyNotifyEvent)
}

// Connect installs h. Map and configure requests are redirected to the root.
// Unmap and destroy notifications arrive on each adopted window, so they are
// taken from a hook that sees every event before dispatch.
func (c *Connection) Connect(h Handlers) {
	xu := c.XUtil
	if h.MapRequest != nil {
		xevent.MapRequestFun(func(_ *xgbutil.XUtil, ev xevent.MapRequestEvent) {
			h.MapRequest(*ev.MapRequestEvent)
		}).Connect(xu, c.root)
	}
	if h.ConfigureRequest != nil {
		xevent.ConfigureRequestFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
			h.ConfigureRequest(*ev.ConfigureRequestEvent)
		}).Connect(xu, c.root)
	}
	xevent.HookFun(func(_ *xgbutil.XUtil, event interface{}) bool {
		switch ev := event.(type) {
		case xproto.UnmapNotifyEvent:
			if h.UnmapNotify != nil {
				h.UnmapNotify(ev)
			}
		case xproto.DestroyNotifyEvent:
			if h.DestroyNotify != nil {
				h.DestroyNotify(ev)
			}
		}
		return true
	}).Connect(xu)
}

package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ErrOtherWM is returned by BecomeWM when another client already holds
// SubstructureRedirect on the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	root  xproto.Window

	grabMu    sync.Mutex
	grabDepth int
}

// NewConnection connects to display, or to $DISPLAY when display is empty.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X display %q: %w", display, err)
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		root:  xu.RootWin(),
	}, nil
}

// Root returns the root window of the default screen.
func (c *Connection) Root() xproto.Window {
	return c.root
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops EventLoop after the event being handled.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Sync waits until the server has processed every request sent so far.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// InternAtoms interns names in one round trip: every request is sent before
// the first reply is read.
func (c *Connection) InternAtoms(names []string) ([]xproto.Atom, error) {
	cookies := make([]xproto.InternAtomCookie, len(names))
	for i, name := range names {
		cookies[i] = xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name)
	}

	out := make([]xproto.Atom, len(names))
	for i, cookie := range cookies {
		reply, err := cookie.Reply()
		if err != nil {
			return nil, fmt.Errorf("intern %s: %w", names[i], err)
		}
		out[i] = reply.Atom
	}
	return out, nil
}

// AtomName returns the name of atom, using xgbutil's atom cache.
func (c *Connection) AtomName(atom xproto.Atom) (string, error) {
	return xprop.AtomName(c.XUtil, atom)
}

// GetProperty reads up to longLength 4-byte units of prop from win.
func (c *Connection) GetProperty(win xproto.Window, prop, typ xproto.Atom, longLength uint32) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(c.XUtil.Conn(), false, win, prop, typ, 0, longLength).Reply()
}

// ChangeProperty replaces prop on win.
func (c *Connection) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, count uint32, data []byte) {
	xproto.ChangeProperty(c.XUtil.Conn(), xproto.PropModeReplace, win, prop, typ, format, count, data)
}

// DeleteProperty removes prop from win.
func (c *Connection) DeleteProperty(win xproto.Window, prop xproto.Atom) {
	xproto.DeleteProperty(c.XUtil.Conn(), win, prop)
}

// SendEvent sends a raw 32-byte event without waiting for the server.
func (c *Connection) SendEvent(dest xproto.Window, mask uint32, event []byte) {
	xproto.SendEvent(c.XUtil.Conn(), false, dest, mask, string(event))
}

// Grab acquires or releases the server grab. Grabs nest: only the outermost
// acquire and the matching release reach the server, and the release waits
// for the server so requests issued under the grab are applied first.
func (c *Connection) Grab(acquire bool) {
	c.grabMu.Lock()
	defer c.grabMu.Unlock()

	if acquire {
		if c.grabDepth == 0 {
			xproto.GrabServer(c.XUtil.Conn())
		}
		c.grabDepth++
		return
	}

	if c.grabDepth == 0 {
		panic("x11: server ungrab without a grab")
	}
	c.grabDepth--
	if c.grabDepth == 0 {
		xproto.UngrabServer(c.XUtil.Conn())
		c.XUtil.Sync()
	}
}

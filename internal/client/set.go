// Package client is the default collaborator that adopts ordinary top-level
// windows. It does not decorate, place or focus them; it records them, keeps
// them alive across a restart through the save-set, and publishes the
// properties pagers and taskbars expect.
package client

import (
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/registry"
)

// WM_STATE values from ICCCM 4.1.3.1.
const (
	stateWithdrawn = 0
	stateNormal    = 1
)

const eventMask = xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange

// Display is the part of the connection the client set uses.
type Display interface {
	Root() xproto.Window
	Grab(acquire bool)
	AddToSaveSet(win xproto.Window)
	RemoveFromSaveSet(win xproto.Window)
	SelectInput(win xproto.Window, mask uint32)
	Map(win xproto.Window)
}

// Set holds the adopted clients in adoption order. It is used from the event
// loop only.
type Set struct {
	display  Display
	codec    *prop.Codec
	atoms    *atoms.Table
	registry *registry.Registry
	logger   *slog.Logger

	clients []*registry.Client
}

// NewSet returns an empty set.
func NewSet(d Display, codec *prop.Codec, table *atoms.Table, reg *registry.Registry, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{display: d, codec: codec, atoms: table, registry: reg, logger: logger}
}

// Manage adopts win. It is called with the server grab held and releases it
// on every path.
func (s *Set) Manage(win xproto.Window, prompt *registry.Prompt) {
	defer s.display.Grab(false)

	if _, tracked := s.registry.Find(win); tracked {
		s.logger.Debug("client already tracked", "window", win)
		return
	}

	c := &registry.Client{
		Window: win,
		Frame:  &registry.Frame{Window: win},
		Layer:  s.layerOf(win),
		Title:  s.title(win),
		Prompt: prompt,
	}
	instance, class := s.class(win)
	c.Class = class

	s.display.AddToSaveSet(win)
	s.display.SelectInput(win, eventMask)

	s.codec.SetArray32(win, s.atoms.Atom(atoms.WMState), s.atoms.Atom(atoms.WMState),
		[]uint32{stateNormal, 0})
	s.codec.SetText(win, s.atoms.Atom(atoms.NetWMVisibleName), c.Title)
	s.codec.SetText(win, s.atoms.Atom(atoms.OBAppTitle), c.Title)
	s.codec.SetText(win, s.atoms.Atom(atoms.OBAppName), instance)
	s.codec.SetText(win, s.atoms.Atom(atoms.OBAppClass), class)

	s.display.Map(win)
	s.registry.Add(win, c)
	s.clients = append(s.clients, c)
	s.publishClientList()

	s.logger.Info("managed client", "window", win, "title", c.Title, "class", c.Class, "layer", c.Layer)
}

// Unmanage releases win. It reports false, and does nothing, for a window
// the set does not hold.
func (s *Set) Unmanage(win xproto.Window) bool {
	i := slices.IndexFunc(s.clients, func(c *registry.Client) bool { return c.Window == win })
	if i < 0 {
		return false
	}
	c := s.clients[i]
	s.clients = slices.Delete(s.clients, i, i+1)
	s.release(c)
	s.publishClientList()
	return true
}

// UnmanageAll releases every client, newest first.
func (s *Set) UnmanageAll() {
	for len(s.clients) > 0 {
		c := s.clients[len(s.clients)-1]
		s.clients = s.clients[:len(s.clients)-1]
		s.release(c)
	}
	s.publishClientList()
}

// Withdraw marks win withdrawn after its client unmapped it, then releases it.
func (s *Set) Withdraw(win xproto.Window) bool {
	if !s.Unmanage(win) {
		return false
	}
	s.codec.SetArray32(win, s.atoms.Atom(atoms.WMState), s.atoms.Atom(atoms.WMState),
		[]uint32{stateWithdrawn, 0})
	return true
}

// Len returns the number of clients held.
func (s *Set) Len() int {
	return len(s.clients)
}

func (s *Set) release(c *registry.Client) {
	if cur, ok := s.registry.Find(c.Window); ok && cur == registry.Window(c) {
		s.registry.Remove(c.Window)
	}
	for _, id := range []atoms.ID{atoms.NetWMVisibleName, atoms.OBAppTitle, atoms.OBAppName, atoms.OBAppClass} {
		s.codec.Erase(c.Window, s.atoms.Atom(id))
	}
	s.display.RemoveFromSaveSet(c.Window)
	s.logger.Info("unmanaged client", "window", c.Window)
}

func (s *Set) publishClientList() {
	ids := make([]uint32, len(s.clients))
	for i, c := range s.clients {
		ids[i] = uint32(c.Window)
	}
	s.codec.SetArray32(s.display.Root(), s.atoms.Atom(atoms.NetClientList), s.atoms.Atom(atoms.Window), ids)
}

// title prefers _NET_WM_NAME and falls back to WM_NAME in any encoding.
func (s *Set) title(win xproto.Window) string {
	if t, ok := s.codec.GetText(win, s.atoms.Atom(atoms.NetWMName), prop.TextUTF8); ok && t.Value != "" {
		return t.Value
	}
	if t, ok := s.codec.GetText(win, s.atoms.Atom(atoms.WMName), prop.TextAny); ok {
		return t.Value
	}
	return ""
}

func (s *Set) class(win xproto.Window) (instance, class string) {
	strs, ok := s.codec.GetArrayText(win, s.atoms.Atom(atoms.WMClass), prop.TextStringNoCC, 2)
	if !ok {
		return "", ""
	}
	instance = strs[0].Value
	if len(strs) > 1 {
		class = strs[1].Value
	}
	return instance, class
}

// layerOf reads the initial layer a client requested through _NET_WM_STATE.
func (s *Set) layerOf(win xproto.Window) registry.Layer {
	states, ok := s.codec.GetArray32(win, s.atoms.Atom(atoms.NetWMState), s.atoms.Atom(atoms.Atom))
	if !ok {
		return registry.LayerNormal
	}
	layer := registry.LayerNormal
	for _, st := range states {
		switch xproto.Atom(st) {
		case s.atoms.Atom(atoms.NetWMStateFullscreen):
			return registry.LayerFullscreen
		case s.atoms.Atom(atoms.NetWMStateAbove):
			layer = registry.LayerAbove
		case s.atoms.Atom(atoms.NetWMStateBelow):
			if layer == registry.LayerNormal {
				layer = registry.LayerBelow
			}
		}
	}
	return layer
}

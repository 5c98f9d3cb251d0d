// Package xtest is an in-memory stand-in for the X server, used by tests of
// the property codec, the adoption orchestrator and the collaborators.
//
// It models only what those packages observe: properties with their type and
// format, the root's children, window attributes and hints, the local event
// queue, the grab depth, and the handful of window requests the default
// collaborators issue.
package xtest

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// ErrBadWindow is returned for windows the server does not know.
var ErrBadWindow = errors.New("BadWindow")

// Property is a stored property value.
type Property struct {
	Type   xproto.Atom
	Format byte
	Data   []byte

	// ValueLen, when non-zero, is reported instead of the element count
	// of Data, to model a reply whose value is shorter than announced.
	ValueLen uint32
}

// SentEvent records one SendEvent request.
type SentEvent struct {
	Dest  xproto.Window
	Mask  uint32
	Event xproto.ClientMessageEvent
}

// Rect is a window geometry set through MoveResize.
type Rect struct {
	X, Y, Width, Height int
}

// Server is not safe for concurrent use.
type Server struct {
	RootWindow xproto.Window

	props map[xproto.Window]map[xproto.Atom]Property
	atoms map[string]xproto.Atom

	children []xproto.Window
	TreeErr  error
	attrs    map[xproto.Window]*xproto.GetWindowAttributesReply
	hints    map[xproto.Window]*icccm.Hints
	queued   map[xproto.Window]bool

	Sent []SentEvent

	GrabDepth   int
	GrabCalls   int
	UngrabCalls int

	Mapped   map[xproto.Window]bool
	SaveSet  map[xproto.Window]bool
	Selected map[xproto.Window]uint32
	Parents  map[xproto.Window]xproto.Window
	Geometry map[xproto.Window]Rect
	Created  []xproto.Window

	Configured []xproto.ConfigureRequestEvent

	nextAtom   xproto.Atom
	nextWindow xproto.Window
}

// NewServer returns an empty server whose root window is 0x1e0.
func NewServer() *Server {
	return &Server{
		RootWindow: 0x1e0,
		props:      make(map[xproto.Window]map[xproto.Atom]Property),
		atoms:      make(map[string]xproto.Atom),
		attrs:      make(map[xproto.Window]*xproto.GetWindowAttributesReply),
		hints:      make(map[xproto.Window]*icccm.Hints),
		queued:     make(map[xproto.Window]bool),
		Mapped:     make(map[xproto.Window]bool),
		SaveSet:    make(map[xproto.Window]bool),
		Selected:   make(map[xproto.Window]uint32),
		Parents:    make(map[xproto.Window]xproto.Window),
		Geometry:   make(map[xproto.Window]Rect),
		nextAtom:   68, // first atom after the predefined ones
		nextWindow: 0x800000,
	}
}

// InternAtoms assigns sequential atoms, returning the same atom for a name
// seen before.
func (s *Server) InternAtoms(names []string) ([]xproto.Atom, error) {
	out := make([]xproto.Atom, len(names))
	for i, name := range names {
		out[i] = s.Intern(name)
	}
	return out, nil
}

// Intern returns the atom for name.
func (s *Server) Intern(name string) xproto.Atom {
	if a, ok := s.atoms[name]; ok {
		return a
	}
	s.nextAtom++
	s.atoms[name] = s.nextAtom
	return s.nextAtom
}

// Root implements prop.Conn and manage.Display.
func (s *Server) Root() xproto.Window {
	return s.RootWindow
}

// SetProperty stores a property as a client would.
func (s *Server) SetProperty(win xproto.Window, prop, typ xproto.Atom, format byte, data []byte) {
	m := s.props[win]
	if m == nil {
		m = make(map[xproto.Atom]Property)
		s.props[win] = m
	}
	m[prop] = Property{Type: typ, Format: format, Data: append([]byte(nil), data...)}
}

// SetShortProperty stores a property whose replies announce valueLen
// elements while carrying only data.
func (s *Server) SetShortProperty(win xproto.Window, prop, typ xproto.Atom, format byte, valueLen uint32, data []byte) {
	s.SetProperty(win, prop, typ, format, data)
	p := s.props[win][prop]
	p.ValueLen = valueLen
	s.props[win][prop] = p
}

// Property returns a stored property.
func (s *Server) Property(win xproto.Window, prop xproto.Atom) (Property, bool) {
	p, ok := s.props[win][prop]
	return p, ok
}

// GetProperty follows the core protocol: a missing property has type None,
// a type mismatch returns the actual type and format with no data, and
// longLength counts 4-byte units.
func (s *Server) GetProperty(win xproto.Window, prop, typ xproto.Atom, longLength uint32) (*xproto.GetPropertyReply, error) {
	p, ok := s.props[win][prop]
	if !ok {
		return &xproto.GetPropertyReply{}, nil
	}
	if typ != xproto.GetPropertyTypeAny && typ != p.Type {
		return &xproto.GetPropertyReply{
			Type:       p.Type,
			Format:     p.Format,
			BytesAfter: uint32(len(p.Data)),
		}, nil
	}

	n := len(p.Data)
	if max := uint64(longLength) * 4; uint64(n) > max {
		n = int(max)
	}
	unit := 1
	if p.Format > 8 {
		unit = int(p.Format / 8)
	}
	n -= n % unit
	valueLen := uint32(n / unit)
	if p.ValueLen != 0 {
		valueLen = p.ValueLen
	}
	return &xproto.GetPropertyReply{
		Type:       p.Type,
		Format:     p.Format,
		BytesAfter: uint32(len(p.Data) - n),
		ValueLen:   valueLen,
		Value:      append([]byte(nil), p.Data[:n]...),
	}, nil
}

// ChangeProperty implements prop.Conn in replace mode.
func (s *Server) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, count uint32, data []byte) {
	size := int(count) * int(format) / 8
	if size > len(data) {
		panic(fmt.Sprintf("xtest: ChangeProperty count %d exceeds %d bytes", count, len(data)))
	}
	s.SetProperty(win, prop, typ, format, data[:size])
}

// DeleteProperty implements prop.Conn.
func (s *Server) DeleteProperty(win xproto.Window, prop xproto.Atom) {
	delete(s.props[win], prop)
}

// SendEvent records a client message.
func (s *Server) SendEvent(dest xproto.Window, mask uint32, event []byte) {
	ev, ok := xproto.ClientMessageEventNew(event).(xproto.ClientMessageEvent)
	if !ok {
		panic("xtest: SendEvent with a non client-message event")
	}
	s.Sent = append(s.Sent, SentEvent{Dest: dest, Mask: mask, Event: ev})
}

// AddWindow makes win a mapped child of the root with the given hints.
func (s *Server) AddWindow(win xproto.Window, hints *icccm.Hints) {
	s.children = append(s.children, win)
	s.attrs[win] = &xproto.GetWindowAttributesReply{MapState: xproto.MapStateViewable}
	if hints != nil {
		s.hints[win] = hints
	}
}

// SetAttributes replaces the attributes reported for win.
func (s *Server) SetAttributes(win xproto.Window, attrs *xproto.GetWindowAttributesReply) {
	s.attrs[win] = attrs
}

// Destroy forgets win, as if it vanished between requests.
func (s *Server) Destroy(win xproto.Window) {
	delete(s.attrs, win)
	delete(s.hints, win)
	delete(s.props, win)
}

// QueueUnmap pretends an UnmapNotify or DestroyNotify for win is waiting in
// the local event queue.
func (s *Server) QueueUnmap(win xproto.Window) {
	s.queued[win] = true
}

// Children implements manage.Display.
func (s *Server) Children(parent xproto.Window) ([]xproto.Window, error) {
	if s.TreeErr != nil {
		return nil, s.TreeErr
	}
	if parent != s.RootWindow {
		return nil, ErrBadWindow
	}
	return append([]xproto.Window(nil), s.children...), nil
}

// Attributes implements manage.Display.
func (s *Server) Attributes(win xproto.Window) (*xproto.GetWindowAttributesReply, error) {
	a, ok := s.attrs[win]
	if !ok {
		return nil, ErrBadWindow
	}
	cp := *a
	return &cp, nil
}

// Hints implements manage.Display.
func (s *Server) Hints(win xproto.Window) (*icccm.Hints, error) {
	h, ok := s.hints[win]
	if !ok {
		return nil, fmt.Errorf("no WM_HINTS on 0x%x", win)
	}
	cp := *h
	return &cp, nil
}

// QueuedUnmap implements manage.Display.
func (s *Server) QueuedUnmap(win xproto.Window) bool {
	return s.queued[win]
}

// Grab tracks nested server grabs.
func (s *Server) Grab(acquire bool) {
	if acquire {
		s.GrabDepth++
		s.GrabCalls++
		return
	}
	if s.GrabDepth == 0 {
		panic("xtest: ungrab without grab")
	}
	s.GrabDepth--
	s.UngrabCalls++
}

// AddToSaveSet implements client.Display.
func (s *Server) AddToSaveSet(win xproto.Window) { s.SaveSet[win] = true }

// RemoveFromSaveSet implements client.Display.
func (s *Server) RemoveFromSaveSet(win xproto.Window) { delete(s.SaveSet, win) }

// SelectInput implements client.Display.
func (s *Server) SelectInput(win xproto.Window, mask uint32) { s.Selected[win] = mask }

// Map implements client.Display and dock.Display.
func (s *Server) Map(win xproto.Window) { s.Mapped[win] = true }

// CreateWindow implements dock.Display.
func (s *Server) CreateWindow(parent xproto.Window) (xproto.Window, error) {
	s.nextWindow++
	win := s.nextWindow
	s.Created = append(s.Created, win)
	s.Parents[win] = parent
	s.attrs[win] = &xproto.GetWindowAttributesReply{MapState: xproto.MapStateUnmapped}
	return win, nil
}

// DestroyWindow implements dock.Display.
func (s *Server) DestroyWindow(win xproto.Window) {
	s.Destroy(win)
	delete(s.Mapped, win)
	delete(s.Parents, win)
	delete(s.Geometry, win)
}

// Reparent implements dock.Display.
func (s *Server) Reparent(win, parent xproto.Window, x, y int16) {
	s.Parents[win] = parent
}

// MoveResize implements dock.Display.
func (s *Server) MoveResize(win xproto.Window, x, y, width, height int) {
	s.Geometry[win] = Rect{X: x, Y: y, Width: width, Height: height}
}

// Configure records a granted ConfigureRequest.
func (s *Server) Configure(ev xproto.ConfigureRequestEvent) {
	s.Configured = append(s.Configured, ev)
}

// AtomName returns the name an atom was interned under.
func (s *Server) AtomName(atom xproto.Atom) (string, error) {
	for name, a := range s.atoms {
		if a == atom {
			return name, nil
		}
	}
	return "", fmt.Errorf("BadAtom %d", atom)
}

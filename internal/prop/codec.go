// Package prop reads and writes typed X11 window properties and sends client
// messages.
//
// Reads report absence with a false second result: most properties are
// optional, so a missing property or one of the wrong type or width is an
// ordinary outcome. Writes are fire-and-forget.
package prop

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/atoms"
)

// Conn is the slice of the X protocol the codec needs. Every call is a
// synchronous round trip except the three writes, which are not acknowledged.
type Conn interface {
	Root() xproto.Window
	GetProperty(win xproto.Window, prop, typ xproto.Atom, longLength uint32) (*xproto.GetPropertyReply, error)
	ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, count uint32, data []byte)
	DeleteProperty(win xproto.Window, prop xproto.Atom)
	SendEvent(dest xproto.Window, mask uint32, event []byte)
}

// MaxMessageWords is the payload size of a format-32 client message.
const MaxMessageWords = 5

// Codec performs typed property access against one connection.
type Codec struct {
	conn   Conn
	atoms  *atoms.Table
	locale Locale
}

// New returns a codec. The atom table must be started before text reads or
// writes are issued.
func New(conn Conn, table *atoms.Table, locale Locale) *Codec {
	return &Codec{conn: conn, atoms: table, locale: locale}
}

// Locale returns the locale used for COMPOUND_TEXT.
func (c *Codec) Locale() Locale {
	return c.locale
}

// Get32 reads a single 32-bit value of type typ.
func (c *Codec) Get32(win xproto.Window, prop, typ xproto.Atom) (uint32, bool) {
	r, err := c.conn.GetProperty(win, prop, typ, 1)
	if !matches32(r, err, typ) || r.ValueLen < 1 || len(r.Value) < 4 {
		return 0, false
	}
	return xgb.Get32(r.Value), true
}

// GetArray32 reads every 32-bit value of type typ. The result is never
// shorter than the server reports.
func (c *Codec) GetArray32(win xproto.Window, prop, typ xproto.Atom) ([]uint32, bool) {
	r, err := c.conn.GetProperty(win, prop, typ, math.MaxInt32)
	if !matches32(r, err, typ) || r.ValueLen == 0 {
		return nil, false
	}
	n := int(r.ValueLen)
	if len(r.Value) < n*4 {
		return nil, false
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = xgb.Get32(r.Value[i*4:])
	}
	return out, true
}

func matches32(r *xproto.GetPropertyReply, err error, typ xproto.Atom) bool {
	if err != nil || r == nil || r.Format != 32 {
		return false
	}
	return typ == xproto.GetPropertyTypeAny || r.Type == typ
}

// Set32 replaces prop with one 32-bit value.
func (c *Codec) Set32(win xproto.Window, prop, typ xproto.Atom, val uint32) {
	c.SetArray32(win, prop, typ, []uint32{val})
}

// SetArray32 replaces prop with vals.
func (c *Codec) SetArray32(win xproto.Window, prop, typ xproto.Atom, vals []uint32) {
	data := make([]byte, len(vals)*4)
	for i, v := range vals {
		xgb.Put32(data[i*4:], v)
	}
	c.conn.ChangeProperty(win, prop, typ, 32, uint32(len(vals)), data)
}

// GetText reads the first string of a text property.
func (c *Codec) GetText(win xproto.Window, prop xproto.Atom, typ TextType) (Text, bool) {
	strs, ok := c.getText(win, prop, typ, 1)
	if !ok {
		return Text{}, false
	}
	return strs[0], true
}

// GetArrayText reads up to max strings of a text property; max < 0 reads
// them all. A single undecodable string fails the whole read.
func (c *Codec) GetArrayText(win xproto.Window, prop xproto.Atom, typ TextType, max int) ([]Text, bool) {
	return c.getText(win, prop, typ, max)
}

func (c *Codec) getText(win xproto.Window, prop xproto.Atom, typ TextType, max int) ([]Text, bool) {
	r, err := c.conn.GetProperty(win, prop, xproto.GetPropertyTypeAny, math.MaxInt32)
	if err != nil || r == nil || r.Format != 8 || r.ValueLen == 0 || len(r.Value) == 0 {
		return nil, false
	}

	enc, ok := c.encodingOf(r.Type)
	if !ok || !c.accepts(typ, r.Type) {
		return nil, false
	}

	strs, err := c.locale.Decode(r.Value, enc, typ, max)
	if err != nil {
		return nil, false
	}
	return strs, true
}

func (c *Codec) encodingOf(typ xproto.Atom) (Encoding, bool) {
	switch typ {
	case c.atoms.Atom(atoms.String):
		return EncodingLatin1, true
	case c.atoms.Atom(atoms.UTF8String):
		return EncodingUTF8, true
	case c.atoms.Atom(atoms.CompoundText):
		return EncodingLocale, true
	}
	return 0, false
}

func (c *Codec) accepts(want TextType, got xproto.Atom) bool {
	switch want {
	case TextAny:
		return true
	case TextString, TextStringXPCS, TextStringNoCC:
		return got == c.atoms.Atom(atoms.String)
	case TextCompound:
		return got == c.atoms.Atom(atoms.CompoundText)
	case TextUTF8:
		return got == c.atoms.Atom(atoms.UTF8String)
	}
	panic(fmt.Sprintf("prop: unknown text type %d", int(want)))
}

// SetText replaces prop with one UTF8_STRING value.
func (c *Codec) SetText(win xproto.Window, prop xproto.Atom, val string) {
	c.conn.ChangeProperty(win, prop, c.atoms.Atom(atoms.UTF8String), 8, uint32(len(val)), []byte(val))
}

// SetArrayText replaces prop with vals, each followed by a NUL.
func (c *Codec) SetArrayText(win xproto.Window, prop xproto.Atom, vals []string) {
	var data []byte
	for _, v := range vals {
		data = append(data, v...)
		data = append(data, 0)
	}
	c.conn.ChangeProperty(win, prop, c.atoms.Atom(atoms.UTF8String), 8, uint32(len(data)), data)
}

// Erase deletes prop from win.
func (c *Codec) Erase(win xproto.Window, prop xproto.Atom) {
	c.conn.DeleteProperty(win, prop)
}

// Message sends a client message about a window to the root window.
func (c *Codec) Message(about xproto.Window, typ xproto.Atom, mask uint32, data ...uint32) {
	c.MessageTo(c.conn.Root(), about, typ, mask, data...)
}

// MessageTo sends a format-32 client message about a window to to. Missing
// words are zero; more than MaxMessageWords is a caller bug.
func (c *Codec) MessageTo(to, about xproto.Window, typ xproto.Atom, mask uint32, data ...uint32) {
	if len(data) > MaxMessageWords {
		panic(fmt.Sprintf("prop: client message with %d words", len(data)))
	}
	var words [MaxMessageWords]uint32
	copy(words[:], data)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: about,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(words[:]),
	}
	c.conn.SendEvent(to, mask, ev.Bytes())
}

// Package inspect reads and writes window properties by name on behalf of
// the CLI and the MCP server.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/atoms"
	"github.com/1broseidon/xadopt/internal/prop"
)

// Conn is the connection an Inspector needs.
type Conn interface {
	prop.Conn
	atoms.Interner
}

// AtomNamer is optionally implemented by connections that can name atoms.
type AtomNamer interface {
	AtomName(atom xproto.Atom) (string, error)
}

// Kind selects how a property is decoded or encoded.
type Kind string

const (
	KindCardinal Kind = "cardinal"
	KindAtom     Kind = "atom"
	KindWindow   Kind = "window"
	KindText     Kind = "text"
	KindUTF8     Kind = "utf8"
	KindString   Kind = "string"
	KindCompound Kind = "compound"
)

// Kinds lists every kind in help order.
var Kinds = []Kind{KindCardinal, KindAtom, KindWindow, KindText, KindUTF8, KindString, KindCompound}

// ParseKind parses a kind name; the empty string means text.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindText, nil
	}
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown property kind %q", s)
}

func (k Kind) numeric() bool {
	return k == KindCardinal || k == KindAtom || k == KindWindow
}

func (k Kind) textType() prop.TextType {
	switch k {
	case KindUTF8:
		return prop.TextUTF8
	case KindString:
		return prop.TextString
	case KindCompound:
		return prop.TextCompound
	}
	return prop.TextAny
}

// Value is a decoded property.
type Value struct {
	Window    uint32   `json:"window"`
	Property  string   `json:"property"`
	Kind      Kind     `json:"kind"`
	Numbers   []uint32 `json:"numbers,omitempty"`
	Names     []string `json:"names,omitempty"`
	Strings   []string `json:"strings,omitempty"`
	Encodings []string `json:"encodings,omitempty"`
}

// Inspector resolves property names and runs codec calls for them.
type Inspector struct {
	conn  Conn
	table *atoms.Table
	codec *prop.Codec
}

// New interns the atom table on conn.
func New(conn Conn, locale prop.Locale) (*Inspector, error) {
	table := atoms.NewTable()
	if err := table.Startup(conn); err != nil {
		return nil, err
	}
	return &Inspector{conn: conn, table: table, codec: prop.New(conn, table, locale)}, nil
}

// Atom resolves name through the atom table, interning names it does not
// hold.
func (i *Inspector) Atom(name string) (xproto.Atom, error) {
	if id, ok := atoms.Lookup(name); ok {
		return i.table.Atom(id), nil
	}
	got, err := i.conn.InternAtoms([]string{name})
	if err != nil {
		return 0, err
	}
	return got[0], nil
}

// Target maps window 0 to the root window.
func (i *Inspector) Target(win uint32) xproto.Window {
	if win == 0 {
		return i.conn.Root()
	}
	return xproto.Window(win)
}

func (i *Inspector) typeAtom(k Kind) xproto.Atom {
	switch k {
	case KindAtom:
		return i.table.Atom(atoms.Atom)
	case KindWindow:
		return i.table.Atom(atoms.Window)
	}
	return i.table.Atom(atoms.Cardinal)
}

// Get reads property name from win. It reports false when the property is
// missing or does not have the requested kind.
func (i *Inspector) Get(win uint32, name string, kind Kind) (Value, bool, error) {
	p, err := i.Atom(name)
	if err != nil {
		return Value{}, false, err
	}
	target := i.Target(win)
	v := Value{Window: uint32(target), Property: name, Kind: kind}

	if kind.numeric() {
		nums, ok := i.codec.GetArray32(target, p, i.typeAtom(kind))
		if !ok {
			return v, false, nil
		}
		v.Numbers = nums
		if namer, ok := i.conn.(AtomNamer); ok && kind == KindAtom {
			for _, n := range nums {
				s, err := namer.AtomName(xproto.Atom(n))
				if err != nil {
					s = ""
				}
				v.Names = append(v.Names, s)
			}
		}
		return v, true, nil
	}

	strs, ok := i.codec.GetArrayText(target, p, kind.textType(), -1)
	if !ok {
		return v, false, nil
	}
	for _, s := range strs {
		v.Strings = append(v.Strings, s.Value)
		v.Encodings = append(v.Encodings, s.Source.String())
	}
	return v, true, nil
}

// Set replaces property name on win. Numeric kinds parse each value as an
// unsigned 32-bit number in any base strconv accepts; atom values may also
// be atom names. Text kinds are always written as UTF8_STRING.
func (i *Inspector) Set(win uint32, name string, kind Kind, values []string) error {
	p, err := i.Atom(name)
	if err != nil {
		return err
	}
	target := i.Target(win)

	if !kind.numeric() {
		if len(values) == 1 {
			i.codec.SetText(target, p, values[0])
		} else {
			i.codec.SetArrayText(target, p, values)
		}
		return nil
	}

	nums := make([]uint32, 0, len(values))
	for _, s := range values {
		n, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			if kind != KindAtom {
				return fmt.Errorf("value %q: %w", s, err)
			}
			a, aerr := i.Atom(s)
			if aerr != nil {
				return aerr
			}
			n = uint64(a)
		}
		nums = append(nums, uint32(n))
	}
	if len(nums) == 1 {
		i.codec.Set32(target, p, i.typeAtom(kind), nums[0])
	} else {
		i.codec.SetArray32(target, p, i.typeAtom(kind), nums)
	}
	return nil
}

// Erase deletes property name from win.
func (i *Inspector) Erase(win uint32, name string) error {
	p, err := i.Atom(name)
	if err != nil {
		return err
	}
	i.codec.Erase(i.Target(win), p)
	return nil
}

// Message sends a client message of type name about win to the root window,
// with the mask window managers listen on.
func (i *Inspector) Message(win uint32, name string, data []uint32) error {
	if len(data) > prop.MaxMessageWords {
		return fmt.Errorf("a client message carries at most %d words, got %d", prop.MaxMessageWords, len(data))
	}
	typ, err := i.Atom(name)
	if err != nil {
		return err
	}
	i.codec.Message(i.Target(win), typ,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect, data...)
	return nil
}

// Package atoms holds the process-wide table of interned X11 atoms.
//
// The table is filled once by Startup and is read-only afterwards, so lookups
// need no locking. Some entries are not interned at all: they are the small
// integers EWMH publishes for move/resize directions, state actions and
// desktop layout, and they share the same lookup interface.
package atoms

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Interner resolves atom names on the server. Implementations should pipeline
// the requests; the result must have one atom per name, in order.
type Interner interface {
	InternAtoms(names []string) ([]xproto.Atom, error)
}

// Table maps every ID to its atom.
type Table struct {
	started bool
	atoms   [NumIDs]xproto.Atom
}

// NewTable returns an empty table. Call Startup before any lookup.
func NewTable() *Table {
	return &Table{}
}

// Startup interns every named entry. Calling it again, e.g. during a config
// reload, does nothing.
func (t *Table) Startup(in Interner) error {
	if t.started {
		return nil
	}

	var names []string
	var ids []ID
	for id, e := range entries {
		if e.fixed {
			continue
		}
		names = append(names, e.name)
		ids = append(ids, ID(id))
	}

	got, err := in.InternAtoms(names)
	if err != nil {
		return fmt.Errorf("failed to intern atoms: %w", err)
	}
	if len(got) != len(names) {
		return fmt.Errorf("failed to intern atoms: got %d atoms for %d names", len(got), len(names))
	}

	var table [NumIDs]xproto.Atom
	for i, id := range ids {
		table[id] = got[i]
	}
	for id, e := range entries {
		if e.fixed {
			table[id] = xproto.Atom(e.value)
		}
	}

	t.atoms = table
	t.started = true
	return nil
}

// Started reports whether Startup has completed.
func (t *Table) Started() bool {
	return t.started
}

// Atom returns the atom for id. It panics if the table has not been started
// or id is not part of the table; both are caller bugs.
func (t *Table) Atom(id ID) xproto.Atom {
	if !t.started {
		panic("atoms: lookup before Startup")
	}
	if !id.valid() {
		panic(fmt.Sprintf("atoms: unknown id %d", int(id)))
	}
	return t.atoms[id]
}

// Name returns the wire name of id, or "" for numeric pseudo-atoms.
func (t *Table) Name(id ID) string {
	if !id.valid() {
		panic(fmt.Sprintf("atoms: unknown id %d", int(id)))
	}
	return entries[id].name
}

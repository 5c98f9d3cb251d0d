package inspect

import (
	"encoding/binary"
	"testing"

	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/xtest"
)

func newInspector(t *testing.T) (*Inspector, *xtest.Server) {
	t.Helper()
	srv := xtest.NewServer()
	locale, err := prop.NewLocale("UTF-8")
	if err != nil {
		t.Fatalf("NewLocale: %v", err)
	}
	in, err := New(srv, locale)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return in, srv
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":         KindText,
		"cardinal": KindCardinal,
		"ATOM":     KindAtom,
		"utf8":     KindUTF8,
		"compound": KindCompound,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("float"); err == nil {
		t.Errorf("ParseKind(float) should fail")
	}
}

func TestSetGetCardinal(t *testing.T) {
	in, _ := newInspector(t)
	if err := in.Set(0x400001, "_NET_WM_DESKTOP", KindCardinal, []string{"0x2"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := in.Get(0x400001, "_NET_WM_DESKTOP", KindCardinal)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if len(v.Numbers) != 1 || v.Numbers[0] != 2 {
		t.Fatalf("Numbers = %v", v.Numbers)
	}

	// Asking for another type reports absence.
	if _, ok, _ := in.Get(0x400001, "_NET_WM_DESKTOP", KindWindow); ok {
		t.Fatalf("WINDOW read of a CARDINAL property succeeded")
	}
	if err := in.Set(0x400001, "_NET_WM_DESKTOP", KindCardinal, []string{"lots"}); err == nil {
		t.Fatalf("non-numeric cardinal accepted")
	}
}

func TestAtomValuesAreNamed(t *testing.T) {
	in, srv := newInspector(t)
	if err := in.Set(0, "_NET_SUPPORTED", KindAtom, []string{"_NET_CLIENT_LIST", "WM_STATE"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := in.Get(0, "_NET_SUPPORTED", KindAtom)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if v.Window != uint32(srv.Root()) {
		t.Fatalf("window 0 resolved to 0x%x", v.Window)
	}
	if len(v.Names) != 2 || v.Names[0] != "_NET_CLIENT_LIST" || v.Names[1] != "WM_STATE" {
		t.Fatalf("Names = %v", v.Names)
	}
}

func TestTextRoundTripAndEncodings(t *testing.T) {
	in, srv := newInspector(t)
	if err := in.Set(0x400001, "_NET_WM_NAME", KindText, []string{"naïve", "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := in.Get(0x400001, "_NET_WM_NAME", KindUTF8)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if len(v.Strings) != 2 || v.Strings[0] != "naïve" || v.Encodings[0] != "utf8" {
		t.Fatalf("Value = %+v", v)
	}

	// A Latin-1 STRING property decodes through the same call.
	name, _ := in.Atom("WM_ICON_NAME")
	str, _ := in.Atom("STRING")
	srv.SetProperty(0x400001, name, str, 8, []byte{'c', 0xe9})
	v, ok, _ = in.Get(0x400001, "WM_ICON_NAME", KindText)
	if !ok || v.Strings[0] != "cé" || v.Encodings[0] != "latin1" {
		t.Fatalf("latin1 Value = %+v, %v", v, ok)
	}
}

func TestErase(t *testing.T) {
	in, srv := newInspector(t)
	in.Set(0x400001, "_XADOPT_TEST", KindCardinal, []string{"7"})
	if err := in.Erase(0x400001, "_XADOPT_TEST"); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	a, _ := in.Atom("_XADOPT_TEST")
	if _, ok := srv.Property(0x400001, a); ok {
		t.Fatalf("property still present")
	}
}

func TestMessage(t *testing.T) {
	in, srv := newInspector(t)
	if err := in.Message(0x400001, "_NET_CLOSE_WINDOW", []uint32{0, 2}); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if len(srv.Sent) != 1 {
		t.Fatalf("sent %d events", len(srv.Sent))
	}
	ev := srv.Sent[0]
	if ev.Dest != srv.Root() || ev.Event.Window != 0x400001 {
		t.Fatalf("event = %+v", ev)
	}
	typ, _ := in.Atom("_NET_CLOSE_WINDOW")
	if ev.Event.Type != typ || ev.Event.Data.Data32[1] != 2 {
		t.Fatalf("event = %+v", ev.Event)
	}

	if err := in.Message(0x400001, "_NET_CLOSE_WINDOW", make([]uint32, 6)); err == nil {
		t.Fatalf("six words accepted")
	}
}

func TestSetArrayCardinal(t *testing.T) {
	in, srv := newInspector(t)
	if err := in.Set(0x400001, "_NET_WM_STRUT", KindCardinal, []string{"1", "2", "3", "4"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	a, _ := in.Atom("_NET_WM_STRUT")
	p, ok := srv.Property(0x400001, a)
	if !ok || p.Format != 32 || len(p.Data) != 16 {
		t.Fatalf("property = %+v", p)
	}
	if binary.LittleEndian.Uint32(p.Data[12:]) != 4 {
		t.Fatalf("last word = %d", binary.LittleEndian.Uint32(p.Data[12:]))
	}
}

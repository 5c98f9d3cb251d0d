package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xadopt/internal/inspect"
	"github.com/1broseidon/xadopt/internal/ipc"
)

type fakeDaemon struct {
	windows []ipc.WindowInfo
	rescans int
	err     error
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{Display: ":1", ManagedCount: len(f.windows), DaemonRunning: true}, nil
}

func (f *fakeDaemon) ListWindows() (*ipc.WindowsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.WindowsData{Windows: f.windows}, nil
}

func (f *fakeDaemon) FindWindow(id uint32) (*ipc.WindowInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, w := range f.windows {
		if w.ID == id {
			w := w
			return &w, nil
		}
	}
	return nil, fmt.Errorf("%w: 0x%x", ipc.ErrNotManaged, id)
}

func (f *fakeDaemon) Rescan() (*ipc.RescanData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rescans++
	return &ipc.RescanData{Before: len(f.windows), After: len(f.windows) + 1}, nil
}

type fakeProps struct {
	calls []string
}

func (f *fakeProps) Get(win uint32, name string, kind inspect.Kind) (inspect.Value, bool, error) {
	f.calls = append(f.calls, name)
	if name != "_NET_WM_NAME" {
		return inspect.Value{Window: win, Property: name, Kind: kind}, false, nil
	}
	return inspect.Value{
		Window:    win,
		Property:  name,
		Kind:      kind,
		Strings:   []string{"xterm"},
		Encodings: []string{"utf8"},
	}, true, nil
}

func newTestServer() (*Server, *fakeDaemon, *fakeProps, *int) {
	d := &fakeDaemon{windows: []ipc.WindowInfo{
		{ID: 0x600002, Kind: "dock", Top: 0x800001, Layer: "above"},
		{ID: 0x400001, Kind: "client", Top: 0x400001, Layer: "normal", Title: "xterm"},
	}}
	props := &fakeProps{}
	opens := 0
	s := NewServer(d, func() (PropertyReader, func(), error) {
		opens++
		return props, func() {}, nil
	}, nil)
	return s, d, props, &opens
}

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"", 0, true},
		{"4194305", 0x400001, true},
		{"0x400001", 0x400001, true},
		{" 0X10 ", 0x10, true},
		{"0x1ffffffff", 0, false},
		{"window", 0, false},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseWindowID(%q) = 0x%x, %v", tt.in, got, err)
		}
	}
}

func TestHandleListWindows(t *testing.T) {
	s, _, _, _ := newTestServer()

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("handleListWindows: %v", err)
	}
	if out.Count != 2 || out.Windows[0].ID != 0x400001 {
		t.Fatalf("windows not sorted by id: %+v", out.Windows)
	}

	_, out, _ = s.handleListWindows(context.Background(), nil, ListWindowsInput{Kind: "Dock"})
	if out.Count != 1 || out.Windows[0].Kind != "dock" {
		t.Fatalf("kind filter: %+v", out)
	}
}

func TestHandleFindWindow(t *testing.T) {
	s, _, _, _ := newTestServer()

	_, out, err := s.handleFindWindow(context.Background(), nil, FindWindowInput{Window: "0x400001"})
	if err != nil || !out.Managed || out.Window.Title != "xterm" {
		t.Fatalf("find managed = %+v, %v", out, err)
	}

	_, out, err = s.handleFindWindow(context.Background(), nil, FindWindowInput{Window: "0x1234"})
	if err != nil || out.Managed {
		t.Fatalf("find unmanaged = %+v, %v", out, err)
	}

	if _, _, err := s.handleFindWindow(context.Background(), nil, FindWindowInput{}); err == nil {
		t.Fatalf("empty window accepted")
	}
}

func TestHandleStatusAndRescan(t *testing.T) {
	s, d, _, _ := newTestServer()

	_, st, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil || st.ManagedCount != 2 || !st.DaemonRunning {
		t.Fatalf("status = %+v, %v", st, err)
	}

	_, data, err := s.handleRescan(context.Background(), nil, RescanInput{})
	if err != nil || data.After != 3 || d.rescans != 1 {
		t.Fatalf("rescan = %+v, %v (rescans=%d)", data, err, d.rescans)
	}
}

func TestDaemonErrorsAreWrapped(t *testing.T) {
	s, d, _, _ := newTestServer()
	d.err = errors.New("failed to connect to daemon")

	_, _, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err == nil || !errors.Is(err, d.err) {
		t.Fatalf("status error = %v", err)
	}
	if _, _, err := s.handleFindWindow(context.Background(), nil, FindWindowInput{Window: "1"}); !errors.Is(err, d.err) {
		t.Fatalf("find error = %v", err)
	}
}

func TestHandleReadProperty(t *testing.T) {
	s, _, props, opens := newTestServer()

	_, out, err := s.handleReadProperty(context.Background(), nil, ReadPropertyInput{Window: "0x400001", Property: "_NET_WM_NAME"})
	if err != nil {
		t.Fatalf("handleReadProperty: %v", err)
	}
	if !out.Found || out.Kind != "text" || out.Strings[0] != "xterm" || out.Window != 0x400001 {
		t.Fatalf("read = %+v", out)
	}

	_, out, err = s.handleReadProperty(context.Background(), nil, ReadPropertyInput{Property: "WM_CLASS", Kind: "string"})
	if err != nil || out.Found {
		t.Fatalf("missing property = %+v, %v", out, err)
	}
	if *opens != 1 || len(props.calls) != 2 {
		t.Fatalf("opens=%d calls=%v, want one connection reused", *opens, props.calls)
	}

	if _, _, err := s.handleReadProperty(context.Background(), nil, ReadPropertyInput{Property: "X", Kind: "float"}); err == nil {
		t.Fatalf("bad kind accepted")
	}
	if _, _, err := s.handleReadProperty(context.Background(), nil, ReadPropertyInput{}); err == nil {
		t.Fatalf("empty property accepted")
	}
}

func TestHandleReadProperty_OpenFailureIsRetried(t *testing.T) {
	attempts := 0
	s := NewServer(&fakeDaemon{}, func() (PropertyReader, func(), error) {
		attempts++
		return nil, nil, errors.New("no display")
	}, nil)

	for i := 0; i < 2; i++ {
		if _, _, err := s.handleReadProperty(context.Background(), nil, ReadPropertyInput{Property: "WM_NAME"}); err == nil {
			t.Fatalf("expected open error")
		}
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestToolsAreListed(t *testing.T) {
	s, _, _, _ := newTestServer()
	ctx := context.Background()

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	res, err := cs.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"list_managed_windows": true,
		"get_daemon_status":    true,
		"find_window":          true,
		"rescan_windows":       true,
		"read_property":        true,
	}
	for _, tool := range res.Tools {
		delete(want, tool.Name)
	}
	if len(want) != 0 {
		t.Fatalf("tools not registered: %v", want)
	}
}

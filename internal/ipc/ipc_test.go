package ipc

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakeBackend struct {
	mu        sync.Mutex
	windows   []WindowInfo
	reloadErr error
	reloads   int
	rescans   int
}

func (b *fakeBackend) Status() StatusData {
	return StatusData{Display: ":9", ManagedCount: len(b.windows), DockAppClass: "DockApp"}
}

func (b *fakeBackend) Windows() []WindowInfo { return b.windows }

func (b *fakeBackend) Find(id uint32) (WindowInfo, bool) {
	for _, w := range b.windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowInfo{}, false
}

func (b *fakeBackend) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reloads++
	return b.reloadErr
}

func (b *fakeBackend) setReloadErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reloadErr = err
}

func (b *fakeBackend) counts() (reloads, rescans int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloads, b.rescans
}

func (b *fakeBackend) Rescan() (RescanData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rescans++
	return RescanData{Before: len(b.windows), After: len(b.windows) + 1}, nil
}

// socketDir keeps the socket path short enough for sun_path.
func socketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "xadopt-ipc")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func startServer(t *testing.T, b Backend) (*Server, *Client) {
	t.Helper()
	path := filepath.Join(socketDir(t), "x.sock")
	srv := NewServer(path, b, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, NewClient(path)
}

func TestStatusAndWindows(t *testing.T) {
	b := &fakeBackend{windows: []WindowInfo{
		{ID: 0x400001, Kind: "client", Top: 0x400001, Layer: "normal", Title: "xterm"},
		{ID: 0x600002, Kind: "dock", Top: 0x800001, Layer: "above"},
	}}
	_, c := startServer(t, b)

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.Display != ":9" || status.ManagedCount != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}

	data, err := c.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(data.Windows) != 2 || data.Windows[0].Title != "xterm" || data.Windows[1].Top != 0x800001 {
		t.Fatalf("unexpected windows: %+v", data.Windows)
	}

	info, err := c.FindWindow(0x600002)
	if err != nil {
		t.Fatalf("FindWindow: %v", err)
	}
	if info.Kind != "dock" {
		t.Fatalf("expected dock, got %+v", info)
	}

	if _, err := c.FindWindow(0x1234); !errors.Is(err, ErrNotManaged) {
		t.Fatalf("expected not managed error, got %v", err)
	}
	if _, err := c.FindWindow(0); err == nil || !strings.Contains(err.Error(), "id is required") {
		t.Fatalf("expected id is required error, got %v", err)
	}
}

func TestListWindows_EmptyIsArray(t *testing.T) {
	_, c := startServer(t, &fakeBackend{})

	data, err := c.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if data.Windows == nil || len(data.Windows) != 0 {
		t.Fatalf("expected empty list, got %#v", data.Windows)
	}
}

func TestReloadAndRescan(t *testing.T) {
	b := &fakeBackend{}
	_, c := startServer(t, b)

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	b.setReloadErr(errors.New("dock_layer: bad layer"))
	if err := c.Reload(); err == nil || !strings.Contains(err.Error(), "dock_layer") {
		t.Fatalf("expected reload error, got %v", err)
	}
	if reloads, _ := b.counts(); reloads != 2 {
		t.Fatalf("expected 2 reloads, got %d", reloads)
	}

	data, err := c.Rescan()
	if err != nil {
		t.Fatalf("Rescan: %v", err)
	}
	if _, rescans := b.counts(); data.After != 1 || rescans != 1 {
		t.Fatalf("unexpected rescan: %+v (%d calls)", data, rescans)
	}
}

func TestUnknownCommandAndBadRequest(t *testing.T) {
	srv, _ := startServer(t, &fakeBackend{})

	for _, tc := range []struct {
		line string
		want string
	}{
		{`{"command":"DANCE"}`, "Unknown command"},
		{`not json`, "Invalid request"},
	} {
		conn, err := net.Dial("unix", srv.SocketPath())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		if _, err := conn.Write([]byte(tc.line + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		buf := make([]byte, 4096)
		n, err := conn.Read(buf)
		conn.Close()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		resp := string(buf[:n])
		if !strings.Contains(resp, `"status":"ERROR"`) || !strings.Contains(resp, tc.want) {
			t.Fatalf("response %q, want error containing %q", resp, tc.want)
		}
	}
}

func TestStop_RemovesSocket(t *testing.T) {
	path := filepath.Join(socketDir(t), "x.sock")
	srv := NewServer(path, &fakeBackend{}, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	srv.Stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("socket still present: %v", err)
	}
	if err := NewClient(path).Ping(); err == nil {
		t.Fatalf("expected ping to fail after Stop")
	}
}

func TestNewOKResponse(t *testing.T) {
	resp, err := NewOKResponse(nil)
	if err != nil || resp.Status != "OK" || resp.Data != nil {
		t.Fatalf("unexpected response: %+v, %v", resp, err)
	}
	if _, err := NewOKResponse(func() {}); err == nil {
		t.Fatalf("expected marshal error for a func")
	}
}

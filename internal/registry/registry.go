// Package registry maps X window IDs to the managed-window records that own
// them.
package registry

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
)

// Registry is safe for concurrent use. Writes come from the event loop only;
// reads may also come from the IPC server.
type Registry struct {
	mu        sync.RWMutex
	windows   map[xproto.Window]Window
	dockLayer atomic.Int64
	logger    *slog.Logger
}

// Entry is one mapping in a Snapshot.
type Entry struct {
	ID     xproto.Window
	Window Window
}

// New creates an empty registry. dockLayer is the layer reported for the dock.
func New(dockLayer Layer, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		windows: make(map[xproto.Window]Window),
		logger:  logger,
	}
	r.dockLayer.Store(int64(dockLayer))
	return r
}

// Add maps id to w, replacing any existing mapping. The displaced record, if
// any, is returned and remains the caller's to release.
func (r *Registry) Add(id xproto.Window, w Window) Window {
	if id == 0 {
		panic("registry: add with window 0")
	}
	if w == nil {
		panic("registry: add with nil record")
	}

	r.mu.Lock()
	prev := r.windows[id]
	r.windows[id] = w
	r.mu.Unlock()

	if prev != nil && prev != w {
		r.logger.Warn("registry: window id reused while still mapped",
			"window", id,
			"previous_kind", prev.Kind(),
			"kind", w.Kind())
	}
	return prev
}

// Remove drops the mapping for id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id xproto.Window) {
	if id == 0 {
		panic("registry: remove with window 0")
	}
	r.mu.Lock()
	delete(r.windows, id)
	r.mu.Unlock()
}

// Find returns the record mapped to id.
func (r *Registry) Find(id xproto.Window) (Window, bool) {
	r.mu.RLock()
	w, ok := r.windows[id]
	r.mu.RUnlock()
	return w, ok
}

// Len returns the number of mapped ids.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// Snapshot returns every mapping, ordered by window id.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.windows))
	for id, w := range r.windows {
		out = append(out, Entry{ID: id, Window: w})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reset forgets every mapping.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.windows = make(map[xproto.Window]Window)
	r.mu.Unlock()
}

// SetDockLayer changes the layer reported for the dock.
func (r *Registry) SetDockLayer(l Layer) {
	r.dockLayer.Store(int64(l))
}

// Top returns the outermost X window of w: the frame for clients and the
// dock, the window itself for everything else.
func (r *Registry) Top(w Window) xproto.Window {
	if w == nil {
		panic("registry: top of nil record")
	}
	return w.top()
}

// Layer returns the stacking layer of w. It panics for prompts.
func (r *Registry) Layer(w Window) Layer {
	if w == nil {
		panic("registry: layer of nil record")
	}
	return w.layer(Layer(r.dockLayer.Load()))
}

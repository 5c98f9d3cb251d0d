package registry

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

// Kind identifies the variant of a managed window.
type Kind int

const (
	KindMenuFrame Kind = iota
	KindDock
	KindClient
	KindInternal
	KindPrompt
)

func (k Kind) String() string {
	switch k {
	case KindMenuFrame:
		return "menuframe"
	case KindDock:
		return "dock"
	case KindClient:
		return "client"
	case KindInternal:
		return "internal"
	case KindPrompt:
		return "prompt"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Layer is a stacking layer, lowest first.
type Layer int

const (
	LayerDesktop Layer = iota
	LayerBelow
	LayerNormal
	LayerAbove
	LayerFullscreen
	// LayerInternal sits above every normal window.
	LayerInternal
)

var layerNames = [...]string{
	LayerDesktop:    "desktop",
	LayerBelow:      "below",
	LayerNormal:     "normal",
	LayerAbove:      "above",
	LayerFullscreen: "fullscreen",
	LayerInternal:   "internal",
}

func (l Layer) String() string {
	if l >= 0 && int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// ParseLayer parses a layer name as written in the config file.
func ParseLayer(s string) (Layer, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for l, n := range layerNames {
		if n == name {
			return Layer(l), nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", s)
}

// LayerNames lists the layer names in stacking order, bottom first.
func LayerNames() []string {
	return append([]string(nil), layerNames[:]...)
}

// Window is a managed-window record. The set of implementations is closed:
// MenuFrame, Dock, Client, Internal and Prompt. Records are created and owned
// by the subsystem of their kind; the registry only references them.
type Window interface {
	Kind() Kind
	top() xproto.Window
	layer(dock Layer) Layer
}

// MenuFrame is an open menu.
type MenuFrame struct {
	Window xproto.Window
}

func (*MenuFrame) Kind() Kind { return KindMenuFrame }
func (m *MenuFrame) top() xproto.Window { return m.Window }
func (*MenuFrame) layer(Layer) Layer { return LayerInternal }

// Dock is the container that holds dock apps.
type Dock struct {
	Frame xproto.Window
}

func (*Dock) Kind() Kind { return KindDock }
func (d *Dock) top() xproto.Window { return d.Frame }
func (*Dock) layer(dock Layer) Layer { return dock }

// Frame is the decoration window wrapped around a client.
type Frame struct {
	Window xproto.Window
}

// Client is an adopted top-level application window. Layer is owned by the
// client subsystem. Prompt is set when the window is one of our own prompts.
type Client struct {
	Window xproto.Window
	Frame  *Frame
	Layer  Layer
	Title  string
	Class  string
	Prompt *Prompt
}

func (*Client) Kind() Kind { return KindClient }
func (c *Client) top() xproto.Window { return c.Frame.Window }
func (c *Client) layer(Layer) Layer { return c.Layer }

// Internal is a window this process created for itself.
type Internal struct {
	Window xproto.Window
}

func (*Internal) Kind() Kind { return KindInternal }
func (i *Internal) top() xproto.Window { return i.Window }
func (*Internal) layer(Layer) Layer { return LayerInternal }

// Prompt is a dialog this process shows. Prompts are stacked through the
// client that displays them, never directly.
type Prompt struct {
	Window xproto.Window
}

func (*Prompt) Kind() Kind { return KindPrompt }
func (p *Prompt) top() xproto.Window { return p.Window }

func (*Prompt) layer(Layer) Layer {
	panic("registry: prompts are layered through their client")
}

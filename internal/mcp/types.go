package mcp

import "github.com/1broseidon/xadopt/internal/ipc"

// ListWindowsInput is the input for the list_managed_windows tool.
type ListWindowsInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"Only list entries of this kind (client, dock, menuframe, internal, prompt)"`
}

// ListWindowsOutput is the output for the list_managed_windows tool.
type ListWindowsOutput struct {
	Count   int              `json:"count"`
	Windows []ipc.WindowInfo `json:"windows"`
}

// StatusInput is the input for the get_daemon_status tool.
type StatusInput struct{}

// FindWindowInput is the input for the find_window tool.
type FindWindowInput struct {
	Window string `json:"window" jsonschema:"required,Window id, decimal or 0x-prefixed hex"`
}

// FindWindowOutput is the output for the find_window tool.
type FindWindowOutput struct {
	Managed bool            `json:"managed"`
	Window  *ipc.WindowInfo `json:"window,omitempty"`
}

// RescanInput is the input for the rescan_windows tool.
type RescanInput struct{}

// ReadPropertyInput is the input for the read_property tool.
type ReadPropertyInput struct {
	Window   string `json:"window,omitempty" jsonschema:"Window id, decimal or 0x-prefixed hex (default: the root window)"`
	Property string `json:"property" jsonschema:"required,Property name (e.g. _NET_WM_NAME, WM_CLASS, _NET_CLIENT_LIST)"`
	Kind     string `json:"kind,omitempty" jsonschema:"How to decode: cardinal, atom, window, text, utf8, string, compound (default: text)"`
}

// ReadPropertyOutput is the output for the read_property tool.
type ReadPropertyOutput struct {
	Found     bool     `json:"found"`
	Window    uint32   `json:"window"`
	Property  string   `json:"property"`
	Kind      string   `json:"kind"`
	Numbers   []uint32 `json:"numbers,omitempty"`
	Names     []string `json:"names,omitempty"`
	Strings   []string `json:"strings,omitempty"`
	Encodings []string `json:"encodings,omitempty"`
}

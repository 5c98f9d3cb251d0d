package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandFindWindow  CommandType = "FIND_WINDOW"
	CommandRescan      CommandType = "RESCAN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Display       string `json:"display"`
	Locale        string `json:"locale"`
	DockLayer     string `json:"dock_layer"`
	DockAppClass  string `json:"dockapp_class"`
	ManagedCount  int    `json:"managed_count"`
	ClientCount   int    `json:"client_count"`
	DockAppCount  int    `json:"dockapp_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// WindowInfo describes one registry entry.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	Kind  string `json:"kind"`
	Top   uint32 `json:"top"`
	Layer string `json:"layer,omitempty"`
	Title string `json:"title,omitempty"`
	Class string `json:"class,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// FindWindowPayload represents the payload for FIND_WINDOW
type FindWindowPayload struct {
	ID uint32 `json:"id"`
}

// RescanData represents the data returned by RESCAN
type RescanData struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/1broseidon/xadopt/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath, or for the default socket when
// socketPath is empty.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			// Keep constructor non-failing; sendRequest surfaces connection errors.
			path = ""
		}
		socketPath = path
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// ListWindows retrieves every managed window.
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListWindows})
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return &data, nil
}

// ErrNotManaged is returned by FindWindow for windows the daemon does not
// track.
var ErrNotManaged = errors.New("window is not managed")

// FindWindow looks up one managed window.
func (c *Client) FindWindow(id uint32) (*WindowInfo, error) {
	payload, err := json.Marshal(FindWindowPayload{ID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal find payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandFindWindow, Payload: payload})
	if err != nil {
		if strings.HasSuffix(err.Error(), "is not managed") {
			return nil, fmt.Errorf("%w: 0x%x", ErrNotManaged, id)
		}
		return nil, err
	}

	var info WindowInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse window data: %w", err)
	}
	return &info, nil
}

// Rescan asks the daemon to adopt any windows it is not managing yet.
func (c *Client) Rescan() (*RescanData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandRescan})
	if err != nil {
		return nil, err
	}

	var data RescanData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse rescan data: %w", err)
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

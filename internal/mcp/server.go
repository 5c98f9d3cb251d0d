// Package mcp exposes the running daemon and window properties to MCP
// clients over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/inspect"
	"github.com/1broseidon/xadopt/internal/ipc"
	"github.com/1broseidon/xadopt/internal/prop"
	"github.com/1broseidon/xadopt/internal/x11"
)

const (
	ServerName    = "xadopt"
	ServerVersion = "0.1.0"
)

// DaemonClient is the part of the IPC client the tools use.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	FindWindow(id uint32) (*ipc.WindowInfo, error)
	Rescan() (*ipc.RescanData, error)
}

// PropertyReader reads one property by name.
type PropertyReader interface {
	Get(win uint32, name string, kind inspect.Kind) (inspect.Value, bool, error)
}

// PropertyOpener connects a PropertyReader. The returned func releases it.
type PropertyOpener func() (PropertyReader, func(), error)

// Server is the MCP server for xadopt.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    DaemonClient
	openProps PropertyOpener
	logger    *slog.Logger

	mu         sync.Mutex
	props      PropertyReader
	closeProps func()
}

// NewServer creates a server that talks to the daemon through daemon and
// opens an X connection for property reads on first use.
func NewServer(daemon DaemonClient, open PropertyOpener, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon:    daemon,
		openProps: open,
		logger:    logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases the X connection, if one was opened.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeProps != nil {
		s.closeProps()
		s.closeProps = nil
		s.props = nil
	}
	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_managed_windows",
		Description: "List every window the xadopt daemon is tracking, with its kind (client, dock, ...), top-level window, stacking layer, title and class. Optionally filter by kind.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_daemon_status",
		Description: "Report the daemon's display, text locale, dock layer, dock-app class and how many windows, clients and dock apps it manages.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_window",
		Description: "Look up one window id in the daemon's registry. Reports managed=false for windows the daemon does not track.",
	}, s.handleFindWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rescan_windows",
		Description: "Ask the daemon to adopt any visible top-level windows it is not managing yet. Returns the registry size before and after.",
	}, s.handleRescan)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "read_property",
		Description: "Read a window property directly from the X server and decode it as numbers, atom names or text. Text decoding accepts STRING, UTF8_STRING and COMPOUND_TEXT.",
	}, s.handleReadProperty)
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, daemonError(err)
	}

	windows := make([]ipc.WindowInfo, 0, len(data.Windows))
	for _, w := range data.Windows {
		if args.Kind != "" && !strings.EqualFold(w.Kind, args.Kind) {
			continue
		}
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	s.logger.Debug("listed managed windows", "count", len(windows), "kind", args.Kind)
	return nil, ListWindowsOutput{Count: len(windows), Windows: windows}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ipc.StatusData{}, daemonError(err)
	}
	return nil, *st, nil
}

func (s *Server) handleFindWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FindWindowInput) (*mcpsdk.CallToolResult, FindWindowOutput, error) {
	id, err := parseWindowID(args.Window)
	if err != nil {
		return nil, FindWindowOutput{}, err
	}
	if id == 0 {
		return nil, FindWindowOutput{}, fmt.Errorf("window is required")
	}

	info, err := s.daemon.FindWindow(id)
	if err != nil {
		if errors.Is(err, ipc.ErrNotManaged) {
			return nil, FindWindowOutput{Managed: false}, nil
		}
		return nil, FindWindowOutput{}, daemonError(err)
	}
	return nil, FindWindowOutput{Managed: true, Window: info}, nil
}

func (s *Server) handleRescan(_ context.Context, _ *mcpsdk.CallToolRequest, _ RescanInput) (*mcpsdk.CallToolResult, ipc.RescanData, error) {
	data, err := s.daemon.Rescan()
	if err != nil {
		return nil, ipc.RescanData{}, daemonError(err)
	}
	s.logger.Info("rescan requested over MCP", "before", data.Before, "after", data.After)
	return nil, *data, nil
}

func (s *Server) handleReadProperty(_ context.Context, _ *mcpsdk.CallToolRequest, args ReadPropertyInput) (*mcpsdk.CallToolResult, ReadPropertyOutput, error) {
	name := strings.TrimSpace(args.Property)
	if name == "" {
		return nil, ReadPropertyOutput{}, fmt.Errorf("property is required")
	}
	kind, err := inspect.ParseKind(args.Kind)
	if err != nil {
		return nil, ReadPropertyOutput{}, err
	}
	id, err := parseWindowID(args.Window)
	if err != nil {
		return nil, ReadPropertyOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.props == nil {
		if s.openProps == nil {
			return nil, ReadPropertyOutput{}, errors.New("property reads are not available")
		}
		props, release, err := s.openProps()
		if err != nil {
			return nil, ReadPropertyOutput{}, err
		}
		s.props, s.closeProps = props, release
	}

	v, ok, err := s.props.Get(id, name, kind)
	if err != nil {
		return nil, ReadPropertyOutput{}, err
	}
	return nil, ReadPropertyOutput{
		Found:     ok,
		Window:    v.Window,
		Property:  v.Property,
		Kind:      string(v.Kind),
		Numbers:   v.Numbers,
		Names:     v.Names,
		Strings:   v.Strings,
		Encodings: v.Encodings,
	}, nil
}

// parseWindowID accepts decimal or 0x-prefixed hex. The empty string is 0.
func parseWindowID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(n), nil
}

func daemonError(err error) error {
	return fmt.Errorf("xadopt daemon: %w", err)
}

// DialProperties returns a PropertyOpener that connects to the display
// named by the environment or cfg.
func DialProperties(cfg *config.Config) PropertyOpener {
	return func() (PropertyReader, func(), error) {
		display, xauthority, err := resolveX11Env(os.Environ(), cfg)
		if err != nil {
			return nil, nil, err
		}
		if xauthority != "" {
			os.Setenv("XAUTHORITY", xauthority)
		}

		codeset := ""
		if cfg != nil {
			codeset = cfg.Locale
		}
		locale, err := prop.ResolveLocale(codeset)
		if err != nil {
			return nil, nil, fmt.Errorf("locale: %w", err)
		}

		conn, err := x11.NewConnection(display)
		if err != nil {
			return nil, nil, err
		}
		in, err := inspect.New(conn, locale)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return in, conn.Close, nil
	}
}

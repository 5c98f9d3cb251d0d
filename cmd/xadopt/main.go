package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/xadopt/internal/ipc"
	"github.com/1broseidon/xadopt/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "find":
		os.Exit(runFind(os.Args[2:]))
	case "rescan":
		os.Exit(runRescan(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "prop":
		os.Exit(runProp(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xadopt <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Take over window management (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  windows             List managed windows")
	fmt.Fprintln(w, "  find <window>       Show one managed window")
	fmt.Fprintln(w, "  rescan              Adopt windows the daemon is not managing yet")
	fmt.Fprintln(w, "  reload              Reload the daemon's config file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  prop get            Read a window property")
	fmt.Fprintln(w, "  prop set            Replace a window property")
	fmt.Fprintln(w, "  prop erase          Delete a window property")
	fmt.Fprintln(w, "  prop send           Send a client message to the root window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xadopt <command> --help' for command-specific options.")
}

// newFlagSet returns a ContinueOnError flag set whose usage prints usage and
// description followed by the flags.
func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseFlags returns -1 when parsing succeeded, or the exit code otherwise.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	return -1
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "xadopt status [--json] [--socket PATH]", "Show daemon status via IPC.")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	socket := fs.String("socket", "", "Daemon socket (default: $XDG_RUNTIME_DIR/xadopt.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient(*socket).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("display:        %s\n", status.Display)
	fmt.Printf("locale:         %s\n", status.Locale)
	fmt.Printf("dock_layer:     %s\n", status.DockLayer)
	fmt.Printf("dockapp_class:  %s\n", status.DockAppClass)
	fmt.Printf("managed_count:  %d\n", status.ManagedCount)
	fmt.Printf("client_count:   %d\n", status.ClientCount)
	fmt.Printf("dockapp_count:  %d\n", status.DockAppCount)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runFind(args []string) int {
	fs := newFlagSet("find", "xadopt find [--json] [--socket PATH] <window>", "Look up one window in the daemon's registry.")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	socket := fs.String("socket", "", "Daemon socket (default: $XDG_RUNTIME_DIR/xadopt.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "find requires <window>")
		fs.Usage()
		return 2
	}
	id, err := parseWindowArg(fs.Arg(0))
	if err != nil || id == 0 {
		fmt.Fprintf(os.Stderr, "invalid window id %q\n", fs.Arg(0))
		return 2
	}

	info, err := ipc.NewClient(*socket).FindWindow(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(info)
	}
	fmt.Printf("id:    0x%x\n", info.ID)
	fmt.Printf("kind:  %s\n", info.Kind)
	fmt.Printf("top:   0x%x\n", info.Top)
	if info.Layer != "" {
		fmt.Printf("layer: %s\n", info.Layer)
	}
	if info.Title != "" {
		fmt.Printf("title: %s\n", info.Title)
	}
	if info.Class != "" {
		fmt.Printf("class: %s\n", info.Class)
	}
	return 0
}

func runRescan(args []string) int {
	fs := newFlagSet("rescan", "xadopt rescan [--socket PATH]", "Adopt visible top-level windows the daemon is not managing yet.")
	socket := fs.String("socket", "", "Daemon socket (default: $XDG_RUNTIME_DIR/xadopt.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "rescan takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient(*socket).Rescan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("managed: %d -> %d\n", data.Before, data.After)
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "xadopt reload [--socket PATH]", "Ask the daemon to reload its config file.")
	socket := fs.String("socket", "", "Daemon socket (default: $XDG_RUNTIME_DIR/xadopt.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient(*socket).Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "xadopt tui [--path PATH] [--socket PATH]",
		"Interactive editor for the config file and browser for managed windows.\nWorks as an offline editor when the daemon is not running.")
	path := fs.String("path", "", "Config file path (default: ~/.config/xadopt/config.yaml)")
	socket := fs.String("socket", "", "Daemon socket (default: $XDG_RUNTIME_DIR/xadopt.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	if err := tui.Run(*path, ipc.NewClient(*socket)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

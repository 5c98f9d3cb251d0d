package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/xadopt/internal/ipc"
	"github.com/1broseidon/xadopt/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xadopt mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xadopt mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("serve", "xadopt mcp serve [--config PATH]",
		"Start the MCP server on stdio. Window listing goes through the running\ndaemon; property reads open their own display connection on first use.\n\nExample:\n  <client> mcp add xadopt -- xadopt mcp serve")
	path := fs.String("config", "", "Config file path (default: ~/.config/xadopt/config.yaml)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	cfg := res.Config

	// stdout carries the protocol.
	logger, closeLog, err := newLogger(cfg.GetLoggingConfig(), os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()

	server := mcp.NewServer(ipc.NewClient(cfg.IPCSocket), mcp.DialProperties(cfg), logger)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "err", err)
		return 1
	}
	return 0
}

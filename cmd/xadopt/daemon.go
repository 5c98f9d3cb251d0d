package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/daemon"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "xadopt daemon [--config PATH]",
		"Become the window manager on the configured display, adopting dock apps\nand client windows. SIGHUP reloads the config; SIGINT/SIGTERM release\nevery window and exit.")
	path := fs.String("config", "", "Config file path (default: ~/.config/xadopt/config.yaml)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	var res *config.LoadResult
	var err error
	if *path == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(*path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(res.Config.GetLoggingConfig(), os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()
	logger.Info("configuration loaded",
		"files", len(res.Files),
		"dock_layer", res.Config.DockLayer,
		"dockapp_class", res.Config.DockAppClass)

	err = daemon.Run(context.Background(), daemon.Options{
		Config:     res.Config,
		ConfigPath: *path,
		Logger:     logger,
	})
	if err != nil {
		if daemon.IsOtherWM(err) {
			logger.Error("cannot take over the display", "err", err)
			return 3
		}
		logger.Error("daemon stopped", "err", err)
		return 1
	}
	return 0
}

// newLogger builds the daemon logger. Output goes to cfg.File when set,
// otherwise to fallback.
func newLogger(cfg config.LoggingConfig, fallback io.Writer) (*slog.Logger, func(), error) {
	out := fallback
	closeFn := func() {}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}

	opts := &slog.HandlerOptions{Level: config.SlogLevel(cfg.Level)}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closeFn, nil
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/xadopt/internal/config"
	"github.com/1broseidon/xadopt/internal/hotkeys"
	"github.com/1broseidon/xadopt/internal/ipc"
	"github.com/1broseidon/xadopt/internal/runtimepath"
	"github.com/1broseidon/xadopt/internal/x11"
)

// WMName is advertised through _NET_SUPPORTING_WM_CHECK.
const WMName = "xadopt"

// Options configure Run.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	// ReconcileInterval defaults to 30s.
	ReconcileInterval time.Duration
}

// Run connects to the display, takes over window management and serves
// until ctx is cancelled or SIGINT/SIGTERM arrives. SIGHUP reloads the
// config file.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return err
	}

	if err := conn.BecomeWM(WMName); err != nil {
		conn.Close()
		return err
	}

	d, err := New(conn, cfg, opts.ConfigPath, logger)
	if err != nil {
		conn.Close()
		return err
	}
	conn.Connect(x11.Handlers{
		MapRequest:       d.HandleMapRequest,
		ConfigureRequest: d.HandleConfigureRequest,
		UnmapNotify:      d.HandleUnmapNotify,
		DestroyNotify:    d.HandleDestroyNotify,
	})
	if err := d.Start(); err != nil {
		conn.Close()
		return err
	}

	keys := hotkeys.NewHandler(conn.XUtil, conn.Root(), logger.With("component", "hotkeys"))
	if err := keys.RegisterFunc("rescan", cfg.RescanHotkey, func() {
		if _, err := d.Rescan(); err != nil {
			logger.Warn("rescan failed", "err", err)
		}
	}); err != nil {
		logger.Warn("hotkey not registered", "err", err)
	}
	if err := keys.RegisterFunc("reload", cfg.ReloadHotkey, func() { d.Reload() }); err != nil {
		logger.Warn("hotkey not registered", "err", err)
	}

	socketPath := cfg.IPCSocket
	if socketPath == "" {
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			d.Stop()
			conn.Close()
			return fmt.Errorf("failed to resolve IPC socket: %w", err)
		}
	}
	ipcServer := ipc.NewServer(socketPath, d, logger.With("component", "ipc"))
	if err := ipcServer.Start(); err != nil {
		d.Stop()
		conn.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: opts.ReconcileInterval,
		Logger:   logger.With("component", "reconciler"),
	}, d.Prune)
	go reconciler.Run(runCtx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			logger.Info("shutting down xadopt daemon")
			cancel()
			ipcServer.Stop()
			d.Stop()
			conn.Sync()
			conn.Quit()
			conn.Close()
		})
	}

	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					d.Reload()
					continue
				}
				shutdown()
				return
			case <-runCtx.Done():
				shutdown()
				return
			}
		}
	}()

	logger.Info("entering event loop", "socket", socketPath)
	conn.EventLoop()

	// The loop also ends when the server goes away; no requests are sent then.
	lost := false
	once.Do(func() {
		lost = true
		cancel()
		ipcServer.Stop()
	})
	if lost {
		return errors.New("X connection closed")
	}
	return nil
}

// IsOtherWM reports whether err means another window manager owns the root.
func IsOtherWM(err error) bool {
	return errors.Is(err, x11.ErrOtherWM)
}

package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/xadopt/internal/registry"
)

// Pruner releases adopted windows that no longer exist and reports how many
// it released.
type Pruner func() int

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops registry entries whose windows vanished
// without a DestroyNotify reaching the event loop.
type Reconciler struct {
	interval time.Duration
	prune    Pruner
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, prune Pruner) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		prune:    prune,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if n := r.prune(); n > 0 {
		r.logger.Info("reconciler: released vanished windows", "count", n)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// Prune releases every adopted client or dock app whose window the server no
// longer knows. The dock frame belongs to this process and is skipped.
func (d *Daemon) Prune() int {
	if !d.lock() {
		return 0
	}
	defer d.mu.Unlock()

	var gone []xproto.Window
	for _, e := range d.sess.Registry.Snapshot() {
		switch e.Window.Kind() {
		case registry.KindClient:
		case registry.KindDock:
			if d.sess.Registry.Top(e.Window) == e.ID {
				continue
			}
		default:
			continue
		}
		if _, err := d.conn.Attributes(e.ID); err != nil {
			gone = append(gone, e.ID)
		}
	}

	n := 0
	for _, win := range gone {
		if d.sess.Unmanage(win) {
			d.logger.Debug("pruned vanished window", "window", win)
			n++
		}
	}
	return n
}

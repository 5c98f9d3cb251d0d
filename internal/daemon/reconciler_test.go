package daemon

import (
	"context"
	"testing"
	"time"
)

func TestReconcileNow(t *testing.T) {
	calls := 0
	r := NewReconciler(ReconcilerConfig{}, func() int {
		calls++
		return 1
	})
	r.ReconcileNow()
	r.ReconcileNow()
	if calls != 2 {
		t.Fatalf("prune called %d times, want 2", calls)
	}
	if r.interval != 30*time.Second {
		t.Fatalf("default interval = %v", r.interval)
	}
}

func TestReconcile_RecoversPanic(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{}, func() int { panic("boom") })
	r.ReconcileNow()
}

func TestRun_StopsOnCancel(t *testing.T) {
	ticks := make(chan struct{}, 8)
	r := NewReconciler(ReconcilerConfig{Interval: time.Millisecond}, func() int {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return 0
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatalf("reconciler never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

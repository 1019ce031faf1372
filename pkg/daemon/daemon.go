// Package daemon re-runs full backup passes at a fixed interval until the
// context is canceled.
package daemon

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"pixelgardenlabs.io/pgl-sync/pkg/plog"
)

// BackupRunner executes one backup pass over all non-optional targets.
type BackupRunner interface {
	Backup(ctx context.Context, tag string) (int, error)
}

// Daemon drives periodic backup passes. A failed pass is logged and the
// daemon keeps running; only context cancellation stops it.
type Daemon struct {
	runner   BackupRunner
	interval time.Duration
	clock    clockwork.Clock
}

// New creates a Daemon driven by the wall clock.
func New(runner BackupRunner, interval time.Duration) *Daemon {
	return NewWithClock(runner, interval, clockwork.NewRealClock())
}

// NewWithClock creates a Daemon with an injected clock. Tests use this with
// a fake clock to step through intervals without sleeping.
func NewWithClock(runner BackupRunner, interval time.Duration, clock clockwork.Clock) *Daemon {
	return &Daemon{
		runner:   runner,
		interval: interval,
		clock:    clock,
	}
}

// Run executes one pass immediately, then one per interval. It returns the
// context's error once canceled.
func (d *Daemon) Run(ctx context.Context) error {
	plog.Info("Daemon started", "interval", d.interval)
	for {
		start := d.clock.Now()
		copied, err := d.runner.Backup(ctx, "")
		if err != nil {
			plog.Error("Backup pass failed, retrying next interval", "error", err)
		} else {
			plog.Info("Backup pass succeeded", "files_copied", copied, "elapsed", d.clock.Since(start).Round(time.Millisecond))
		}

		select {
		case <-ctx.Done():
			plog.Info("Daemon stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-d.clock.After(d.interval):
		}
	}
}

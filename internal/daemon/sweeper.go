package daemon

import (
	"context"
	"time"

	"github.com/Farman-RT/QuickSaver/internal/logging"
	"github.com/Farman-RT/QuickSaver/internal/workspace"
)

// runSweeper reclaims unredeemed artifacts once at startup and then on every
// interval until ctx ends.
func (d *Daemon) runSweeper(ctx context.Context) {
	defer d.sweeps.Done()

	interval := d.cfg.SweepInterval()
	if interval <= 0 {
		return
	}
	d.SweepOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes artifacts older than the configured retention.
func (d *Daemon) SweepOnce(ctx context.Context) workspace.SweepResult {
	result := d.files.Sweep(ctx, d.cfg.SweepMaxAge(), d.logger)
	if len(result.Removed) > 0 || len(result.Errors) > 0 {
		d.logger.Info("orphan sweep finished",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
			logging.Int64("bytes_reclaimed", result.Reclaimed),
			logging.String(logging.FieldEventType, "sweep_summary"),
		)
	}
	return result
}

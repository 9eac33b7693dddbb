package tracker

import (
	"context"
	"log/slog"
	"time"
)

// Watcher runs every tracker once per interval until its context ends.
type Watcher struct {
	service  *Service
	trackers []*Tracker
	interval time.Duration
	opts     RunOptions
}

func NewWatcher(service *Service, trackers []*Tracker, interval time.Duration, opts RunOptions) *Watcher {
	return &Watcher{service: service, trackers: trackers, interval: interval, opts: opts}
}

// Watch runs immediately and then on every tick. Runs never overlap; failed
// runs are logged and retried on the next tick.
func (w *Watcher) Watch(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("watching trackers", "count", len(w.trackers), "interval", w.interval, "dry_run", w.opts.DryRun)

	for {
		if err := w.service.RunAll(ctx, w.trackers, w.opts); err != nil && ctx.Err() == nil {
			slog.Warn("watch cycle finished with errors", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

package watcher

import (
	"context"
	"time"

	"github.com/raoulx24/atlas-archive/internal/snapshot"
)

// StartPolling compares tree snapshots on a fixed interval.
func (w *Watcher) StartPolling(ctx context.Context) error {
	prev, err := snapshot.Take(w.dir)
	if err != nil {
		return err
	}
	w.markReady()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			next, err := snapshot.Take(w.dir)
			if err != nil {
				// the source may be temporarily unmounted; keep the last view
				w.log.Errorf("failed to scan %s: %v", w.dir, err)
				continue
			}
			for _, ev := range snapshot.Diff(prev, next) {
				w.sink.OnEvent(ev)
			}
			prev = next
		}
	}
}

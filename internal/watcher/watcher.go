// Package watcher monitors the source tree and reports changes to a Sink.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/event"
	"github.com/raoulx24/atlas-archive/internal/fsprobe"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

// Sink receives change events. It is called from the watcher goroutine.
type Sink interface {
	OnEvent(ev event.ChangeEvent)
}

// Watcher observes a directory tree recursively.
type Watcher struct {
	dir      string
	mode     string
	interval time.Duration

	log  logging.Logger
	sink Sink

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a watcher for dir using the watch configuration.
func New(dir string, cfg config.WatchConfig, log logging.Logger, sink Sink) *Watcher {
	return &Watcher{
		dir:      dir,
		mode:     cfg.Mode,
		interval: cfg.PollInterval,
		log:      log,
		sink:     sink,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the tree is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

func (w *Watcher) markReady() {
	w.readyOnce.Do(func() { close(w.ready) })
}

// Start chooses the watching strategy and blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	switch w.mode {
	case "fsnotify":
		return w.StartFsNotify(ctx)

	case "poll":
		return w.StartPolling(ctx)

	case "auto":
		res := fsprobe.Probe(w.dir)
		if res.Supported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warningf("fsnotify disabled: %s, falling back to polling every %s", res.Reason, w.interval)
		return w.StartPolling(ctx)

	default:
		return fmt.Errorf("unknown watch mode %q", w.mode)
	}
}

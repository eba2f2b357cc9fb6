// Package debounce coalesces bursts of filesystem events into batches.
//
// A save writes many files in quick succession. Every accepted event pushes
// a single inactivity deadline forward; only when the tree has been quiet
// for the whole window is the collected batch handed downstream, once.
package debounce

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/raoulx24/atlas-archive/internal/event"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

// CacheDir is the path component ignored when IgnoreCache is set.
const CacheDir = "cache"

// Options are the runtime-adjustable settings of a Debouncer.
type Options struct {
	BackupFolder string
	IgnoreCache  bool
	Debug        bool
	Window       time.Duration
}

// FlushFunc receives each settled batch. It may be called with an empty
// batch when only directory events were seen.
type FlushFunc func(event.Batch)

// Debouncer implements the watcher's event sink.
type Debouncer struct {
	mu sync.Mutex

	opts       Options
	backupRoot string

	batch   event.Batch
	timer   clock.Timer
	gen     uint64
	stopped bool

	clock clock.Clock
	log   logging.Logger
	flush FlushFunc
}

// New creates a Debouncer. A nil clk means the wall clock.
func New(opts Options, clk clock.Clock, log logging.Logger, flush FlushFunc) *Debouncer {
	if clk == nil {
		clk = clock.WallClock
	}
	d := &Debouncer{clock: clk, log: log, flush: flush}
	d.UpdateOptions(opts)
	return d
}

// UpdateOptions applies new settings; they take effect from the next event.
func (d *Debouncer) UpdateOptions(opts Options) {
	root := ""
	if opts.BackupFolder != "" {
		root = resolve(opts.BackupFolder)
	}

	d.mu.Lock()
	d.opts = opts
	d.backupRoot = root
	d.mu.Unlock()
}

// OnEvent filters ev and, if accepted, restarts the inactivity timer.
func (d *Debouncer) OnEvent(ev event.ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	path := resolve(ev.Path)
	if d.backupRoot != "" && within(d.backupRoot, path) {
		return
	}
	if d.opts.IgnoreCache && hasComponent(path, CacheDir) {
		return
	}

	if !ev.IsDir {
		d.batch = append(d.batch, event.ChangeEvent{Kind: ev.Kind, Path: ev.Path})
	}

	if d.opts.Debug {
		d.log.Debugf("change detected: %s at %s, resetting timer", ev.Kind, ev.Path)
	}

	d.schedule()
}

// schedule replaces the pending timer. Caller holds d.mu.
func (d *Debouncer) schedule() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.opts.Window, func() { d.fire(gen) })
}

// fire runs when a timer expires. A timer that was replaced or stopped
// after it had already started firing finds a newer generation and does nothing.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	batch := d.batch
	d.batch = nil
	d.timer = nil
	debug := d.opts.Debug
	d.mu.Unlock()

	if debug {
		d.log.Debugf("inactivity detected, %d file events in batch", len(batch))
	} else {
		d.log.Infof("change detected, preparing backup")
	}

	d.flush(batch)
}

// Stop cancels the pending timer. No batch is flushed after Stop returns
// unless its flush had already begun.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.batch = nil
}

// Pending reports how many file events are waiting for the timer.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.batch)
}

// resolve returns an absolute path with symlinks resolved where possible.
// Deleted paths cannot be resolved, so their parent is tried instead.
func resolve(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func hasComponent(path, name string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == name {
			return true
		}
	}
	return false
}

// Package monitor wires the watcher, debouncer and worker into one
// start/stop unit.
package monitor

import (
	"context"
	"os"
	"sync"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/atlas-archive/internal/archive"
	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/debounce"
	"github.com/raoulx24/atlas-archive/internal/event"
	"github.com/raoulx24/atlas-archive/internal/fs"
	"github.com/raoulx24/atlas-archive/internal/journal"
	"github.com/raoulx24/atlas-archive/internal/logging"
	"github.com/raoulx24/atlas-archive/internal/mailbox"
	"github.com/raoulx24/atlas-archive/internal/retention"
	"github.com/raoulx24/atlas-archive/internal/watcher"
	"github.com/raoulx24/atlas-archive/internal/worker"
)

// Options carries optional collaborators; zero values select the defaults.
type Options struct {
	Clock clock.Clock
	FS    fs.FS
}

// Monitor watches one source folder and backs it up after each burst.
type Monitor struct {
	mu  sync.Mutex
	cfg config.Config

	log      logging.Logger
	opts     Options
	debounce *debounce.Debouncer
	mb       *mailbox.Mailbox[worker.Job]
	worker   *worker.Worker
	watch    *watcher.Watcher
	journal  *journal.Journal

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds a monitor for an already validated config.
func New(cfg config.Config, opts Options) *Monitor {
	if opts.FS == nil {
		opts.FS = fs.New()
	}

	m := &Monitor{
		cfg:  cfg,
		log:  logging.New("monitor"),
		opts: opts,
		mb:   mailbox.New[worker.Job](),
	}

	m.debounce = debounce.New(debounceOptions(cfg), opts.Clock, logging.New("debounce"), m.settled)
	m.worker = worker.New(cfg, logging.New("worker"),
		classify.New(),
		archive.New(opts.FS, logging.New("archive")),
		retention.New(opts.FS, logging.New("retention")),
		m.mb, opts.FS,
	)
	m.watch = watcher.New(cfg.SourceFolder, cfg.Watch, logging.New("watcher"), m.debounce)
	return m
}

func debounceOptions(cfg config.Config) debounce.Options {
	return debounce.Options{
		BackupFolder: cfg.BackupFolder,
		IgnoreCache:  cfg.IgnoreShaderCache,
		Debug:        cfg.DebugOutput,
		Window:       cfg.Watch.DebounceWindow,
	}
}

func (m *Monitor) settled(b event.Batch) {
	if !m.mb.Put(worker.Job{Batch: b}) {
		m.log.Debugf("monitor stopping, dropped batch of %d events", len(b))
	}
}

// Start begins watching and returns once the tree is being watched.
// A missing source folder is reported as NotFound.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	cfg := m.cfg
	m.mu.Unlock()

	if info, err := os.Stat(cfg.SourceFolder); err != nil || !info.IsDir() {
		return errors.NotFoundf("source folder %q", cfg.SourceFolder)
	}
	if err := m.opts.FS.MkdirAll(cfg.BackupFolder); err != nil {
		return errors.Annotatef(err, "creating backup folder %s", cfg.BackupFolder)
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.JournalPath())
		if err != nil {
			return errors.Annotate(err, "opening journal")
		}
		m.journal = j
		m.worker.WithRecorder(j)
	}

	ctx, m.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	m.group = g

	g.Go(func() error {
		m.worker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return errors.Annotate(m.watch.Start(gctx), "watcher")
	})
	g.Go(func() error {
		<-gctx.Done()
		// no new batches; the worker finishes what has already settled
		m.debounce.Stop()
		m.mb.Close()
		return nil
	})

	select {
	case <-m.watch.Ready():
		m.log.Infof("watchdog started, monitoring folder: %s", cfg.SourceFolder)
		return nil
	case <-gctx.Done():
		return m.Wait()
	}
}

// Stop cancels the pending debounce timer and stops watching.
// A backup already in progress runs to completion; use Wait for it.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Wait blocks until every goroutine has finished and releases the journal.
func (m *Monitor) Wait() error {
	if m.group == nil {
		return nil
	}
	err := m.group.Wait()
	if m.journal != nil {
		if cerr := m.journal.Close(); cerr != nil {
			m.log.Warningf("closing journal: %v", cerr)
		}
		m.journal = nil
	}
	m.log.Infof("watchdog stopped")
	return err
}

// UpdateConfig applies reloadable settings to the running monitor.
// Folder and watch changes need a restart and are ignored here.
func (m *Monitor) UpdateConfig(cfg config.Config) {
	m.mu.Lock()
	old := m.cfg
	if cfg.SourceFolder != old.SourceFolder || cfg.BackupFolder != old.BackupFolder || cfg.Watch != old.Watch || cfg.Journal != old.Journal {
		m.log.Warningf("folder, watch and journal settings change only after a restart")
		cfg.SourceFolder = old.SourceFolder
		cfg.BackupFolder = old.BackupFolder
		cfg.Watch = old.Watch
		cfg.Journal = old.Journal
	}
	m.cfg = cfg
	m.mu.Unlock()

	m.debounce.UpdateOptions(debounceOptions(cfg))
	m.worker.UpdateConfig(cfg)
}

// Config returns the settings currently in effect.
func (m *Monitor) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

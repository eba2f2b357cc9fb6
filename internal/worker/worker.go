// Package worker runs the backup pipeline for settled batches, one at a time.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/raoulx24/atlas-archive/internal/archive"
	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/fs"
	"github.com/raoulx24/atlas-archive/internal/journal"
	"github.com/raoulx24/atlas-archive/internal/logging"
	"github.com/raoulx24/atlas-archive/internal/mailbox"
	"github.com/raoulx24/atlas-archive/internal/retention"
)

// Worker classifies batches, gates them, writes archives and applies retention.
type Worker struct {
	mu  sync.RWMutex
	cfg config.Config

	fs         fs.FS
	log        logging.Logger
	classifier *classify.Classifier
	archiver   *archive.Archiver
	retention  Retention
	recorder   Recorder
	mb         *mailbox.Mailbox[Job]
	now        func() time.Time
}

// New creates a worker. A nil filesystem means the OS filesystem.
func New(cfg config.Config, log logging.Logger, c *classify.Classifier, a *archive.Archiver, r Retention, mb *mailbox.Mailbox[Job], filesystem fs.FS) *Worker {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Worker{
		cfg:        cfg,
		fs:         filesystem,
		log:        log,
		classifier: c,
		archiver:   a,
		retention:  r,
		mb:         mb,
		now:        time.Now,
	}
}

// UpdateConfig replaces the settings used by the next run.
func (w *Worker) UpdateConfig(cfg config.Config) {
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
}

// Start takes jobs from the mailbox until it is closed and drained.
// Cancelling ctx does not interrupt a run that has already started.
func (w *Worker) Start(ctx context.Context) {
	w.log.Debugf("starting worker")
	runCtx := context.WithoutCancel(ctx)
	for {
		job, ok := w.mb.Take()
		if !ok {
			w.log.Debugf("worker stopped")
			return
		}
		w.Handle(runCtx, job)
	}
}

// Handle runs the pipeline for one job and returns what happened.
func (w *Worker) Handle(ctx context.Context, job Job) journal.Run {
	w.mu.RLock()
	cfg := w.cfg
	w.mu.RUnlock()

	run := journal.Run{StartedAt: w.now()}

	desc := w.describe(job)
	run.Category = desc.Suffix()

	if ok, reason := Allow(desc, cfg); !ok {
		w.log.Infof("%s. Skipping.", reason)
		return w.finish(ctx, run, journal.Skipped, reason)
	}

	if cfg.DebugOutput {
		w.log.Debugf("proceeding with %s", desc.DisplayName())
	}

	if err := checkSource(w.fs, cfg.SourceFolder); err != nil {
		w.log.Errorf("%v, skipping backup", err)
		return w.finish(ctx, run, journal.Failed, err.Error())
	}

	w.log.Infof("starting %s for %q", desc.DisplayName(), cfg.SourceFolder)
	res, err := w.archiver.Create(ctx, archive.Request{
		Source:      cfg.SourceFolder,
		Destination: cfg.BackupFolder,
		Suffix:      desc.Suffix(),
		IgnoreCache: cfg.IgnoreShaderCache,
	})
	if err != nil {
		w.log.Errorf("failed to create backup: %v", err)
		return w.finish(ctx, run, journal.Failed, err.Error())
	}

	run.Archive = res.Path
	run.Entries = res.Entries
	run.Bytes = res.Bytes
	w.log.Infof("successfully created backup: %s (%d files, %s)", res.Path, res.Entries, humanize.Bytes(uint64(res.Bytes)))
	if res.Changed > 0 {
		w.log.Warningf("%d files changed while the backup was written", res.Changed)
	}

	deleted, err := w.retention.Apply(ctx, cfg.BackupFolder, archive.SourceName(cfg.SourceFolder), retention.Policy{MaxVersions: cfg.VersionsToKeep})
	if err != nil {
		w.log.Errorf("error enforcing retention policy: %v", err)
	}
	run.Pruned = len(deleted)

	w.log.Infof("backup process complete, awaiting next change")
	return w.finish(ctx, run, journal.Succeeded, "")
}

func (w *Worker) describe(job Job) classify.Descriptor {
	if job.Descriptor != nil {
		return *job.Descriptor
	}
	return w.classifier.Classify(job.Batch)
}

func (w *Worker) finish(ctx context.Context, run journal.Run, status journal.Status, reason string) journal.Run {
	run.FinishedAt = w.now()
	run.Status = status
	run.Reason = reason

	if w.recorder != nil {
		if err := w.recorder.Record(ctx, run); err != nil {
			w.log.Warningf("recording run in journal: %v", err)
		}
	}
	return run
}

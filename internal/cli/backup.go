package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"

	"github.com/raoulx24/atlas-archive/internal/archive"
	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/fs"
	"github.com/raoulx24/atlas-archive/internal/journal"
	"github.com/raoulx24/atlas-archive/internal/logging"
	"github.com/raoulx24/atlas-archive/internal/retention"
	"github.com/raoulx24/atlas-archive/internal/worker"
)

// Execute implements the go-flags Commander interface for BackupCommand.
func (c *BackupCommand) Execute(args []string) error {
	cat, err := classify.ParseCategory(c.Category)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c.Args.Config, c.globals, c.out)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	run, err := c.backup(context.Background(), cfg, cat)
	if err != nil {
		return err
	}
	return c.report(run)
}

// backup runs one pipeline pass for cat, recording it when the journal is enabled.
func (c *BackupCommand) backup(ctx context.Context, cfg *config.Config, cat classify.Category) (journal.Run, error) {
	filesystem := fs.New()
	w := worker.New(*cfg, logging.New("worker"),
		classify.New(),
		archive.New(filesystem, logging.New("archive")),
		retention.New(filesystem, logging.New("retention")),
		nil, filesystem,
	)

	if cfg.Journal.Enabled {
		if err := filesystem.MkdirAll(filepath.Dir(cfg.JournalPath())); err != nil {
			return journal.Run{}, errors.Annotate(err, "creating journal folder")
		}
		j, err := journal.Open(cfg.JournalPath())
		if err != nil {
			return journal.Run{}, errors.Annotate(err, "opening journal")
		}
		defer j.Close()
		w.WithRecorder(j)
	}

	desc := classify.DescriptorFor(cat)
	return w.Handle(ctx, worker.Job{Descriptor: &desc}), nil
}

func (c *BackupCommand) report(run journal.Run) error {
	switch run.Status {
	case journal.Succeeded:
		fmt.Fprintf(c.out, "Created %s (%d files, %s", run.Archive, run.Entries, humanize.Bytes(uint64(run.Bytes)))
		if run.Pruned > 0 {
			fmt.Fprintf(c.out, ", pruned %d", run.Pruned)
		}
		fmt.Fprintln(c.out, ")")
		return nil
	case journal.Skipped:
		fmt.Fprintf(c.out, "Skipped: %s\n", run.Reason)
		return nil
	default:
		return errors.Errorf("backup failed: %s", run.Reason)
	}
}

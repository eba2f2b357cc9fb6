package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"

	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/journal"
)

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.Args.Config, c.globals, c.out)
	if err != nil {
		return err
	}
	return c.history(context.Background(), cfg)
}

func (c *HistoryCommand) history(ctx context.Context, cfg *config.Config) error {
	if c.Limit <= 0 {
		return errors.NotValidf("limit %d", c.Limit)
	}

	path := cfg.JournalPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(c.out, "No backups recorded yet.")
		return nil
	}

	j, err := journal.Open(path)
	if err != nil {
		return errors.Annotate(err, "opening journal")
	}
	defer j.Close()

	runs, err := j.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No backups recorded yet.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintln(c.out, formatRun(r))
	}
	return nil
}

func formatRun(r journal.Run) string {
	when := r.StartedAt.Local().Format("2006-01-02 15:04:05")
	head := fmt.Sprintf("%s  %-9s  %-12s", when, r.Status, r.Category)

	switch r.Status {
	case journal.Succeeded:
		line := fmt.Sprintf("%s  %s  %d files, %s", head, filepath.Base(r.Archive), r.Entries, humanize.Bytes(uint64(r.Bytes)))
		if r.Pruned > 0 {
			line += fmt.Sprintf(", pruned %d", r.Pruned)
		}
		return line
	default:
		return fmt.Sprintf("%s  %s", head, r.Reason)
	}
}

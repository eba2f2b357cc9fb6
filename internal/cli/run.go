package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/logging"
	"github.com/raoulx24/atlas-archive/internal/monitor"
)

// Execute implements the go-flags Commander interface for RunCommand.
func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.Args.Config, c.globals, c.out)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.out, "atlas-archive %s: backing up %s into %s\n", c.version, cfg.SourceFolder, cfg.BackupFolder)
	return c.run(ctx, cfg)
}

// run blocks until ctx is cancelled or the monitor fails.
func (c *RunCommand) run(ctx context.Context, cfg *config.Config) error {
	m := monitor.New(*cfg, monitor.Options{})
	if err := m.Start(ctx); err != nil {
		return err
	}

	verbose := c.globals != nil && c.globals.Verbose
	r := newReloader(c.Args.Config, *cfg, verbose, m, logging.New("reload"))
	stopReload, err := r.start(cfg.ConfigReload)
	if err != nil {
		m.Stop()
		_ = m.Wait()
		return err
	}
	defer stopReload()

	done := make(chan error, 1)
	go func() { done <- m.Wait() }()

	select {
	case <-ctx.Done():
		m.Stop()
		return <-done
	case err := <-done:
		return err
	}
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/juju/errors"

	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

// loadConfig reads and validates the config at path, writing the defaults
// first when the file does not exist yet.
func loadConfig(path string, globals *GlobalFlags, out io.Writer) (*config.Config, error) {
	cfg, created, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, errors.Annotatef(err, "loading config %s", path)
	}
	if created {
		fmt.Fprintf(out, "Wrote default config to %s; set sourceFolder and backupFolder before running.\n", path)
	}
	if globals != nil && globals.Verbose {
		cfg.DebugOutput = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	return logging.Configure(os.Stderr, cfg.DebugOutput)
}

package config

import (
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
)

var validate = validator.New()

// Validate checks field constraints. Any failure is reported as NotValid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.NotValidf("config: %v", err)
	}

	if c.ConfigReload.Enabled {
		if _, err := cron.ParseStandard(c.ConfigReload.Schedule); err != nil {
			return errors.NotValidf("config: reload schedule %q: %v", c.ConfigReload.Schedule, err)
		}
	}

	src, _ := filepath.Abs(c.SourceFolder)
	dst, _ := filepath.Abs(c.BackupFolder)
	if src == dst {
		return errors.NotValidf("config: backupFolder must differ from sourceFolder")
	}

	return nil
}

// JournalPath resolves the journal database location.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.BackupFolder, JournalFile)
}

package worker

import (
	"github.com/juju/errors"

	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/fs"
)

// Allow decides whether a classified batch may produce a backup.
// Mandatory categories always pass; the rest follow their config flag.
func Allow(desc classify.Descriptor, cfg config.Config) (bool, string) {
	if desc.Mandatory {
		return true, ""
	}

	switch desc.Category {
	case classify.RestorePoint:
		if !cfg.BackupRestorePoints {
			return false, "Restore Point backup is disabled in settings"
		}
	case classify.AutoSave:
		if !cfg.BackupAutosaves {
			return false, "Autosave backup is disabled in settings"
		}
	case classify.Other:
		if !cfg.BackupOther {
			return false, "'Other' file change backup is disabled in settings"
		}
	}
	return true, ""
}

// checkSource reports a NotFound error when the source folder is gone,
// for example because its drive was unmounted after the burst started.
func checkSource(filesystem fs.FS, source string) error {
	if source == "" {
		return errors.NotFoundf("source folder (not configured)")
	}
	info, err := filesystem.Stat(source)
	if err != nil || !info.IsDir {
		return errors.NotFoundf("source folder %q", source)
	}
	return nil
}

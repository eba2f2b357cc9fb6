// Package retention prunes old archives of a source beyond its version limit.
package retention

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"

	"github.com/raoulx24/atlas-archive/internal/archive"
	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/fs"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

// Policy caps the number of archives kept per source name.
type Policy struct {
	MaxVersions int
}

// Engine applies a Policy to the archives of one source in a backup folder.
type Engine struct {
	fs  fs.FS
	log logging.Logger
}

// New creates a retention engine. A nil filesystem means the OS filesystem.
func New(filesystem fs.FS, log logging.Logger) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Engine{fs: filesystem, log: log}
}

// Apply deletes the oldest archives of source in dir until at most
// policy.MaxVersions remain. A failed delete is logged and skipped.
// It returns the paths that were removed.
func (e *Engine) Apply(ctx context.Context, dir, source string, policy Policy) ([]string, error) {
	e.log.Infof("checking retention policy (%d versions to keep)", policy.MaxVersions)

	names, err := e.List(dir, source)
	if err != nil {
		return nil, err
	}

	if len(names) <= policy.MaxVersions {
		return nil, nil
	}

	excess := len(names) - policy.MaxVersions
	e.log.Infof("found %d backups, deleting the %d oldest", len(names), excess)

	var deleted []string
	for _, name := range names[:excess] {
		path := filepath.Join(dir, name)
		if err := e.fs.Remove(ctx, path); err != nil {
			e.log.Errorf("could not delete old backup %s: %v", path, err)
			continue
		}
		e.log.Infof("deleted old backup: %s", path)
		deleted = append(deleted, path)
	}

	return deleted, nil
}

// List returns the archive names of source in dir, oldest first.
// A name belongs to source only when it parses as
// "{timestamp}_{source}_{category}[-N].zip" with exactly that source, so
// sources such as "A_X" or "X_old" never count towards "X".
func (e *Engine) List(dir, source string) ([]string, error) {
	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Annotatef(err, "reading backup folder %s", dir)
	}

	type owned struct {
		name string
		p    archive.Parsed
	}
	var found []owned
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		p, ok := archive.Parse(name)
		if !ok || p.Source != source {
			continue
		}
		if _, err := classify.ParseCategory(p.Suffix); err != nil {
			continue
		}
		found = append(found, owned{name, p})
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i].p, found[j].p
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return found[i].name < found[j].name
	})

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names, nil
}

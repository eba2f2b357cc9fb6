// Package snapshot records the state of a directory tree so that two
// recordings can be compared. The poll watcher uses it where fsnotify
// events are unavailable, such as network shares.
package snapshot

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/raoulx24/atlas-archive/internal/event"
)

// Tree maps absolute paths to their state. The root itself is not included.
type Tree map[string]Entry

// Take walks root and records every file and directory below it.
// Entries that vanish during the walk are skipped.
func Take(root string) (Tree, error) {
	tree := Tree{}
	root = filepath.Clean(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		tree[path] = FromFileInfo(info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tree, nil
}

// Diff reports the changes that turn prev into next, sorted by path.
func Diff(prev, next Tree) []event.ChangeEvent {
	var out []event.ChangeEvent

	for path, n := range next {
		p, ok := prev[path]
		switch {
		case !ok:
			out = append(out, event.ChangeEvent{Kind: event.Created, Path: path, IsDir: n.IsDir})
		case p.changed(n):
			out = append(out, event.ChangeEvent{Kind: event.Modified, Path: path, IsDir: n.IsDir})
		}
	}

	for path, p := range prev {
		if _, ok := next[path]; !ok {
			out = append(out, event.ChangeEvent{Kind: event.Deleted, Path: path, IsDir: p.IsDir})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Path < out[j].Path
	})
	return out
}

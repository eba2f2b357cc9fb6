package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/raoulx24/atlas-archive/internal/event"
)

// StartFsNotify watches every directory of the tree and forwards events.
// Directories created later are added as they appear.
func (w *Watcher) StartFsNotify(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dirs := map[string]struct{}{}
	if err := w.addTree(fw, dirs, w.dir, false); err != nil {
		return err
	}

	w.log.Debugf("fsnotify watching %d directories under %s", len(dirs), w.dir)
	w.markReady()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				w.log.Errorf("events channel closed")
				return nil
			}
			w.handle(fw, dirs, ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, dirs map[string]struct{}, ev fsnotify.Event) {
	kind, ok := kindOf(ev.Op)
	if !ok {
		return
	}

	_, isDir := dirs[ev.Name]

	switch kind {
	case event.Created:
		info, err := os.Lstat(ev.Name)
		if err == nil && info.IsDir() {
			w.sink.OnEvent(event.ChangeEvent{Kind: kind, Path: ev.Name, IsDir: true})
			// a directory moved in already has content
			if err := w.addTree(fw, dirs, ev.Name, true); err != nil {
				w.log.Errorf("watching new directory %s: %v", ev.Name, err)
			}
			return
		}

	case event.Deleted, event.Moved:
		if isDir {
			forget(fw, dirs, ev.Name)
		}
	}

	w.sink.OnEvent(event.ChangeEvent{Kind: kind, Path: ev.Name, IsDir: isDir})
}

// addTree registers root and every directory below it. With emit set,
// files found along the way are reported as created.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dirs map[string]struct{}, root string, emit bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if emit {
				w.sink.OnEvent(event.ChangeEvent{Kind: event.Created, Path: path})
			}
			return nil
		}
		if err := fw.Add(path); err != nil {
			return err
		}
		dirs[path] = struct{}{}
		return nil
	})
}

func forget(fw *fsnotify.Watcher, dirs map[string]struct{}, root string) {
	prefix := root + string(filepath.Separator)
	for d := range dirs {
		if d == root || strings.HasPrefix(d, prefix) {
			_ = fw.Remove(d)
			delete(dirs, d)
		}
	}
}

func kindOf(op fsnotify.Op) (event.Kind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return event.Created, true
	case op.Has(fsnotify.Remove):
		return event.Deleted, true
	case op.Has(fsnotify.Rename):
		return event.Moved, true
	case op.Has(fsnotify.Write), op.Has(fsnotify.Chmod):
		return event.Modified, true
	}
	return 0, false
}

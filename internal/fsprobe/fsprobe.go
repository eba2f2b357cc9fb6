// Package fsprobe checks whether fsnotify delivers events for a directory.
// Network shares and FUSE mounts often accept a watch and then stay silent,
// so the probe writes and renames a scratch file and waits to hear about it.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Timeout is how long Probe waits for the scratch file to be reported.
var Timeout = 200 * time.Millisecond

const scratchPrefix = ".atlas-probe-"

// Result reports whether fsnotify is usable and, if not, why.
type Result struct {
	Supported bool
	Reason    string
}

func unsupported(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Probe watches dir and checks that a create+rename of a scratch file is seen.
// Unrelated events in dir are ignored.
func Probe(dir string) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !st.IsDir() {
		return unsupported("not a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	f, err := os.CreateTemp(dir, scratchPrefix+"*.tmp")
	if err != nil {
		return unsupported("cannot create probe file: %v", err)
	}
	tmp := f.Name()
	f.Close()

	final := strings.TrimSuffix(tmp, ".tmp")
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return unsupported("rename failed: %v", err)
	}
	defer os.Remove(final)

	deadline := time.After(Timeout)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported("watcher closed")
			}
			if strings.HasPrefix(filepath.Base(ev.Name), scratchPrefix) {
				return Result{Supported: true}
			}
		case err := <-w.Errors:
			return unsupported("watch error: %v", err)
		case <-deadline:
			return unsupported("no events received within %s", Timeout)
		}
	}
}

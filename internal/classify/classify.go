// Package classify decides what kind of backup a batch of changes represents.
//
// Save slots follow a numbering convention: even-numbered slots are restore
// points, odd or unnumbered slots are autosaves. Deleted files that stay
// deleted always produce a backup so that the lost data can be recovered.
package classify

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raoulx24/atlas-archive/internal/event"
)

const (
	saveExt    = ".hg"
	saveMarker = "save"
)

// Classifier maps batches to backup descriptors.
type Classifier struct {
	exists func(path string) bool
}

// New returns a Classifier that checks deleted paths against the local disk.
func New() *Classifier {
	return &Classifier{exists: pathExists}
}

// NewWithExists returns a Classifier using a custom existence check.
func NewWithExists(exists func(path string) bool) *Classifier {
	return &Classifier{exists: exists}
}

// Classify applies the rules in priority order; earlier rules win.
func (c *Classifier) Classify(batch event.Batch) Descriptor {
	// A delete followed by a re-create within the window is an overwrite,
	// only a path still missing now counts as a real deletion.
	for _, p := range batch.PathsOf(event.Deleted) {
		if !c.exists(p) {
			return DescriptorFor(Undelete)
		}
	}

	var saves []string
	for _, p := range batch.Paths() {
		if !strings.EqualFold(filepath.Ext(p), saveExt) {
			continue
		}
		if strings.Contains(strings.ToLower(filepath.Base(p)), saveMarker) {
			saves = append(saves, p)
		}
	}
	if len(saves) == 0 {
		return DescriptorFor(Other)
	}

	var hasEven, hasOdd bool
	for _, p := range saves {
		if n, ok := slotNumber(filepath.Base(p)); ok && isEven(n) {
			hasEven = true
		} else {
			hasOdd = true
		}
	}

	switch {
	case hasEven && hasOdd:
		return DescriptorFor(General)
	case hasEven:
		return DescriptorFor(RestorePoint)
	default:
		return DescriptorFor(AutoSave)
	}
}

// slotNumber concatenates every digit of name in order of appearance,
// so "savea1b2.hg" yields "12".
func slotNumber(name string) (string, bool) {
	var b strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String(), b.Len() > 0
}

func isEven(digits string) bool {
	if n, err := strconv.ParseUint(digits, 10, 64); err == nil {
		return n%2 == 0
	}
	// out of range for uint64, parity is still the last digit's
	return (digits[len(digits)-1]-'0')%2 == 0
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

package classify

import (
	"strings"

	"github.com/juju/errors"
)

// Category is the kind of backup a batch of changes calls for.
type Category int

const (
	Other Category = iota
	Undelete
	General
	RestorePoint
	AutoSave
)

var categoryNames = map[Category]string{
	Other:        "Other",
	Undelete:     "Undelete",
	General:      "General",
	RestorePoint: "RestorePoint",
	AutoSave:     "AutoSave",
}

var displayNames = map[Category]string{
	Other:        "Other Backup",
	Undelete:     "Undelete Backup",
	General:      "General Savegame Backup",
	RestorePoint: "Restore Point Backup",
	AutoSave:     "Autosave Backup",
}

// String returns the archive suffix of the category.
func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "Other"
}

// ParseCategory maps an archive suffix (case-insensitive) back to its category.
func ParseCategory(s string) (Category, error) {
	for c, n := range categoryNames {
		if strings.EqualFold(n, s) {
			return c, nil
		}
	}
	return Other, errors.NotValidf("backup category %q", s)
}

// Descriptor is the outcome of classifying one batch.
type Descriptor struct {
	Category  Category
	Mandatory bool
}

// Suffix is the token embedded in the archive file name.
func (d Descriptor) Suffix() string { return d.Category.String() }

// DisplayName is the human readable backup type used in log lines.
func (d Descriptor) DisplayName() string { return displayNames[d.Category] }

// DescriptorFor returns the descriptor a category gets when classified.
func DescriptorFor(c Category) Descriptor {
	return Descriptor{Category: c, Mandatory: c == Undelete || c == General}
}

package snapshot

import (
	"os"
	"time"
)

// Entry describes a single path within a tree snapshot.
type Entry struct {
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// FromFileInfo constructs an Entry from os.FileInfo.
func FromFileInfo(info os.FileInfo) Entry {
	return Entry{
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

func (e Entry) changed(other Entry) bool {
	return e.Size != other.Size || !e.ModTime.Equal(other.ModTime) || e.IsDir != other.IsDir
}

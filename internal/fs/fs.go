// Package fs defines the filesystem abstraction used by atlas-archive.
// It provides the FS interface and the FileInfo type shared by the archiver
// and the retention enforcer.
package fs

import (
	"context"
	"io"
	"os"
	"time"
)

// FileInfo is the subset of file metadata the archiver needs. Inode is
// zero where the platform does not expose one.
type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Inode uint64
	IsDir bool
}

// File is a writable file that can be flushed to stable storage.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// Copied reports the result of streaming one file into a writer.
type Copied struct {
	Bytes int64
	// Changed is set when the source was modified while it was read.
	Changed bool
}

// FS is the filesystem seen by the archiver and the retention enforcer.
// Stat errors satisfy os.IsNotExist for missing paths. CopyInto, Rename and
// Remove retry transient errors until ctx is done.
type FS interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	MkdirAll(path string) error
	Create(path string) (File, error)
	CopyInto(ctx context.Context, dst io.Writer, src string) (Copied, error)
	Rename(ctx context.Context, oldPath, newPath string) error
	Remove(ctx context.Context, path string) error
}

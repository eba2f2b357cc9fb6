//go:build windows

package fs

import "os"

// Windows does not expose POSIX inodes through os.FileInfo; size and
// mtime are the only change signals there.
func inodeOf(info os.FileInfo) uint64 {
	_ = info
	return 0
}

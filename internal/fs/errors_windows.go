//go:build windows

package fs

import "syscall"

// ERROR_SHARING_VIOLATION and ERROR_LOCK_VIOLATION: another process has
// the file open without sharing.
func init() {
	transientErrnos = append(transientErrnos, syscall.Errno(32), syscall.Errno(33))
}

package fs

import (
	"errors"
	"syscall"
)

// transientErrnos are failures worth retrying: the game or a sync client
// usually holds a save file open only for a moment.
var transientErrnos = []syscall.Errno{
	syscall.EAGAIN,
	syscall.EBUSY,
	syscall.ETXTBSY,
	syscall.ETIMEDOUT,
}

func isTransient(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	for _, e := range transientErrnos {
		if errno == e {
			return true
		}
	}
	return false
}

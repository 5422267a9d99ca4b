//go:build linux

package host

import "golang.org/x/sys/unix"

// LockMemory pins current and future pages so the realtime path cannot
// page-fault mid-window. Failure is survivable; the caller just warns.
func LockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}

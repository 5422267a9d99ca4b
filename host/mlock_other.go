//go:build !linux

package host

// LockMemory is a no-op on platforms without mlockall.
func LockMemory() error {
	return nil
}

//go:build !windows

package channels

import "golang.org/x/sys/unix"

// Prot returns the mmap(2) protection bits for m, or 0 for an invalid
// mode.
func (m MapMode) Prot() int {
	switch m {
	case MapReadOnly:
		return unix.PROT_READ
	case MapPrivate, MapReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	}
	return 0
}

// Flags returns the mmap(2) sharing flag for m, or 0 for an invalid
// mode.
func (m MapMode) Flags() int {
	switch m {
	case MapPrivate:
		return unix.MAP_PRIVATE
	case MapReadOnly, MapReadWrite:
		return unix.MAP_SHARED
	}
	return 0
}

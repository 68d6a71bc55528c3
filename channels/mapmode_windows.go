//go:build windows

package channels

import "golang.org/x/sys/windows"

// Prot returns the CreateFileMapping page protection for m, or 0 for an
// invalid mode.
func (m MapMode) Prot() int {
	switch m {
	case MapPrivate:
		return windows.PAGE_WRITECOPY
	case MapReadOnly:
		return windows.PAGE_READONLY
	case MapReadWrite:
		return windows.PAGE_READWRITE
	}
	return 0
}

// Flags returns the MapViewOfFile access flag for m, or 0 for an
// invalid mode.
func (m MapMode) Flags() int {
	switch m {
	case MapPrivate:
		return windows.FILE_MAP_COPY
	case MapReadOnly:
		return windows.FILE_MAP_READ
	case MapReadWrite:
		return windows.FILE_MAP_WRITE
	}
	return 0
}

package channels

import (
	"fmt"
	"strings"

	cherr "chanio/internal/errors"
)

// MapMode describes how a memory-mapped region of a file behaves.
//
// The set of modes is closed: the package exports exactly three values
// and the zero value is not a valid mode.  Modes compare with ==.
type MapMode uint8

const (
	// MapPrivate is a copy-on-write mapping: writes are visible only to
	// the mapping process and never reach the file.
	MapPrivate MapMode = iota + 1
	// MapReadOnly is a shared mapping that rejects writes.
	MapReadOnly
	// MapReadWrite is a shared mapping whose writes reach the file.
	MapReadWrite
)

var mapModeNames = [...]string{
	MapPrivate:   "PRIVATE",
	MapReadOnly:  "READ_ONLY",
	MapReadWrite: "READ_WRITE",
}

// MapModes returns every mode in declaration order.
func MapModes() []MapMode {
	return []MapMode{MapPrivate, MapReadOnly, MapReadWrite}
}

// Valid reports whether m is one of the three exported modes.
func (m MapMode) Valid() bool {
	return m >= MapPrivate && m <= MapReadWrite
}

// String returns the mode's label, e.g. "READ_ONLY".
func (m MapMode) String() string {
	if m.Valid() {
		return mapModeNames[m]
	}
	return fmt.Sprintf("MapMode(%d)", uint8(m))
}

// Writable reports whether the mapped bytes may be modified.
func (m MapMode) Writable() bool {
	return m == MapPrivate || m == MapReadWrite
}

// Shared reports whether changes are visible to other mappings of the
// same file.
func (m MapMode) Shared() bool {
	return m == MapReadOnly || m == MapReadWrite
}

// ParseMapMode parses a mode label.  Matching ignores case and accepts
// '-' in place of '_' ("read-only").
func ParseMapMode(s string) (MapMode, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, m := range MapModes() {
		if mapModeNames[m] == norm {
			return m, nil
		}
	}
	return 0, &cherr.ConfigError{
		Field:   "map-mode",
		Value:   s,
		Message: "unknown map mode",
		Hint:    "use one of PRIVATE, READ_ONLY, READ_WRITE",
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MapMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MapMode) UnmarshalText(text []byte) error {
	parsed, err := ParseMapMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

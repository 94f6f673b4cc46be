package ring

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the end of a container that retrievals target.
// The zero value is FIFO.
type Mode uint8

const (
	// FIFO retrieves the oldest item first.
	FIFO Mode = iota
	// LIFO retrieves the newest item first.
	LIFO
)

// ErrUnknownMode is the error wrapped when parsing an unrecognized mode name.
var ErrUnknownMode = errors.New("unknown mode")

// String returns "fifo" or "lifo".
func (m Mode) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case FIFO, LIFO:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownMode, uint8(m))
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
// Names are matched case-insensitively.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "fifo":
		*m = FIFO
	case "lifo":
		*m = LIFO
	default:
		return fmt.Errorf("%w %q", ErrUnknownMode, text)
	}
	return nil
}

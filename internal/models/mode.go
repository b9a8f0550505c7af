package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned when a mode name is not recognised.
var ErrUnknownMode = errors.New("unknown mode")

// Mode selects how a summary is generated.
type Mode int

const (
	// ModeRemote asks the completion service.
	ModeRemote Mode = iota
	// ModeOffline returns the canned mock summary.
	ModeOffline
)

// Modes lists every mode in the order the UI offers them.
var Modes = []Mode{ModeRemote, ModeOffline}

// ParseMode accepts "remote"/"real" and "offline"/"test", case-insensitive,
// as well as the UI labels.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remote", "real", strings.ToLower(ModeRemote.Label()):
		return ModeRemote, nil
	case "offline", "test", strings.ToLower(ModeOffline.Label()):
		return ModeOffline, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeOffline:
		return "offline"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Label is the human-readable name shown in the UI.
func (m Mode) Label() string {
	switch m {
	case ModeRemote:
		return "Real (Remote)"
	case ModeOffline:
		return "Test (Offline)"
	default:
		return m.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

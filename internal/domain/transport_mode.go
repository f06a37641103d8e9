package domain

import (
	"fmt"
	"strings"
)

// TransportMode is the closed set of travel modes the planner supports.
type TransportMode int

const (
	Automobile TransportMode = iota
	Walking
)

func (m TransportMode) String() string {
	switch m {
	case Automobile:
		return "automobile"
	case Walking:
		return "walking"
	default:
		return fmt.Sprintf("TransportMode(%d)", int(m))
	}
}

func (m TransportMode) Valid() bool {
	return m == Automobile || m == Walking
}

// ParseTransportMode accepts the canonical names plus a few common aliases.
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automobile", "driving", "car":
		return Automobile, nil
	case "walking", "walk", "foot":
		return Walking, nil
	}
	return 0, fmt.Errorf("parse transport mode %q: %w", s, ErrValidation)
}

func (m TransportMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("marshal transport mode: invalid value %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *TransportMode) UnmarshalText(b []byte) error {
	parsed, err := ParseTransportMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

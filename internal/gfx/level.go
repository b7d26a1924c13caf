package gfx

import (
	"errors"
	"fmt"
	"strings"
)

// Level is a device capability level, ordered from least to most capable.
type Level int

const (
	LevelUnknown Level = iota
	LevelGL11
	LevelGLES2
	LevelGL21
	LevelGLES3
	LevelGL33
	LevelGL43
)

var levelNames = map[Level]string{
	LevelUnknown: "unknown",
	LevelGL11:    "gl1.1",
	LevelGLES2:   "gles2",
	LevelGL21:    "gl2.1",
	LevelGLES3:   "gles3",
	LevelGL33:    "gl3.3",
	LevelGL43:    "gl4.3",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts the names printed by Level.String.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if level != LevelUnknown && name == s {
			return level, nil
		}
	}
	return LevelUnknown, fmt.Errorf("unknown capability level %q", s)
}

// ErrNoSupportedLevel is returned when none of the preferred levels is available.
var ErrNoSupportedLevel = errors.New("no supported capability level")

// NegotiateLevel walks the caller's preference list in order and returns the
// first level the device supports.
func NegotiateLevel(preferred []Level, supported func(Level) bool) (Level, error) {
	for _, level := range preferred {
		if supported(level) {
			return level, nil
		}
	}
	return LevelUnknown, fmt.Errorf("%w (tried %v)", ErrNoSupportedLevel, preferred)
}

// DefaultLevels is the preference list used when the configuration names none.
func DefaultLevels() []Level {
	return []Level{LevelGL43, LevelGL33, LevelGLES3, LevelGL21, LevelGLES2, LevelGL11}
}

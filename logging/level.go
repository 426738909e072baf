package logging

import (
	"fmt"
	"strings"
)

// Level is a record severity. Lower values are more severe; a destination with
// minimum level m accepts every record whose level is <= m.
type Level int8

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	HTTPLevel
	DebugLevel
)

var levelNames = [...]string{
	ErrorLevel: "error",
	WarnLevel:  "warn",
	InfoLevel:  "info",
	HTTPLevel:  "http",
	DebugLevel: "debug",
}

func (l Level) String() string {
	if l < ErrorLevel || l > DebugLevel {
		return fmt.Sprintf("Level(%d)", int8(l))
	}
	return levelNames[l]
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", name)
}

package logging

import (
	"fmt"
	"strings"
)

//Level is the minimal severity of the written log records. UNKNOWN writes everything
type Level int

const (
	UNKNOWN Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = []string{"unknown", "debug", "info", "warn", "error", "fatal"}

func (l Level) String() string {
	if l < UNKNOWN || int(l) >= len(levelNames) {
		return ""
	}
	return levelNames[l]
}

//Enabled returns true if records of the level pass the configured LogLevel
func (l Level) Enabled() bool {
	return LogLevel <= l
}

//ToLevel returns UNKNOWN for empty or unsupported names
func ToLevel(levelStr string) Level {
	level, _ := ParseLevel(levelStr)
	return level
}

//ParseLevel parses log.level value. Empty value means UNKNOWN
func ParseLevel(levelStr string) (Level, error) {
	name := strings.TrimSpace(strings.ToLower(levelStr))
	if name == "" {
		return UNKNOWN, nil
	}
	for i := DEBUG; i <= FATAL; i++ {
		if levelNames[i] == name {
			return i, nil
		}
	}
	return UNKNOWN, fmt.Errorf("Unsupported log level [%s]. Supported: %s", levelStr, strings.Join(levelNames[DEBUG:], ", "))
}

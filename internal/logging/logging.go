// Package logging is a small leveled wrapper around the standard logger.
//
// The level defaults to INFO. It is read from LOG_LEVEL, DEBUG=1 forces
// debug output, and SetLevel overrides both.
package logging

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

var (
	levelMu  sync.RWMutex
	current  = LevelInfo
	initOnce sync.Once
)

func initLevel() {
	initOnce.Do(func() {
		switch strings.ToLower(os.Getenv("DEBUG")) {
		case "1", "true", "yes", "on":
			current = LevelDebug
			return
		}

		if l, err := ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			current = l
		}
	})
}

// ParseLevel parses a level name. An empty string is INFO.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Errorf("unknown log level %q", s)
	}
}

// SetLevel overrides the level taken from the environment.
func SetLevel(l Level) {
	initLevel()

	levelMu.Lock()
	current = l
	levelMu.Unlock()
}

// GetLevel returns the current level.
func GetLevel() Level {
	initLevel()

	levelMu.RLock()
	defer levelMu.RUnlock()
	return current
}

func logf(l Level, prefix, format string, args ...interface{}) {
	if GetLevel() <= l {
		log.Printf(prefix+format, args...)
	}
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) { logf(LevelDebug, "[DEBUG] ", format, args...) }

// Info logs an informational message.
func Info(format string, args ...interface{}) { logf(LevelInfo, "[INFO] ", format, args...) }

// Warn logs a warning.
func Warn(format string, args ...interface{}) { logf(LevelWarn, "[WARN] ", format, args...) }

// Error logs an error.
func Error(format string, args ...interface{}) { logf(LevelError, "[ERROR] ", format, args...) }

// Fatal logs the message and exits.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

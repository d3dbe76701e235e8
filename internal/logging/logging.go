// Package logging builds the zerolog loggers used across cheatgen.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "CHEATGEN_LOG_LEVEL"

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// fall back to fallback.
func ParseLevel(name string, fallback zerolog.Level) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return fallback
	}
	return level
}

// New creates a console logger writing to out at the given level.
func New(level zerolog.Level, out io.Writer) zerolog.Logger {
	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.TimeFormat = time.RFC3339
	})
	return zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewFromEnv creates a stderr logger. verbose selects debug; otherwise the
// level comes from CHEATGEN_LOG_LEVEL and defaults to warn so CLI output
// stays clean.
func NewFromEnv(verbose bool) zerolog.Logger {
	level := ParseLevel(os.Getenv(EnvLevel), zerolog.WarnLevel)
	if verbose {
		level = zerolog.DebugLevel
	}
	return New(level, os.Stderr)
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

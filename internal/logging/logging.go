// Package logging configures the process-wide zerolog logger and hands
// out component-scoped child loggers.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Setup configures the global logger. When pretty is true, output goes
// through a console writer suited for a terminal; otherwise raw JSON.
func Setup(level string, pretty bool) {
	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}

	logger := zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()

	mu.Lock()
	root = logger
	mu.Unlock()
}

// SetOutput redirects the global logger, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	root = root.Output(w)
	mu.Unlock()
}

// Component returns a child logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}

// ParseLevel maps a level string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

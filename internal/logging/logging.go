// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Components log through
// github.com/rs/zerolog/log and tag entries with a "component" field.
// Extra writers, such as the rotating file or the admin alert mailer,
// receive the same JSON entries.
func Setup(level string, pretty bool, extra ...io.Writer) {
	SetupWriter(os.Stdout, level, pretty, extra...)
}

// SetupWriter is Setup with an explicit console destination.
func SetupWriter(w io.Writer, level string, pretty bool, extra ...io.Writer) {
	zerolog.SetGlobalLevel(parseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	if len(extra) > 0 {
		out = zerolog.MultiLevelWriter(append([]io.Writer{out}, extra...)...)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Component returns a child of the global logger for the named component.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

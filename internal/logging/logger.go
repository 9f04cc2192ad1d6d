// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global zerolog logger at w. Development gets a
// human-readable console writer at debug level, every other environment
// gets JSON lines at info level. A nil w means stderr.
func Setup(env string, development bool, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if development {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Str("env", env).Logger()
	log.Logger = logger
	// log.Ctx falls back to this when a context carries no request logger.
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}

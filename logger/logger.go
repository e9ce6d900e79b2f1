// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger at the given level. Production writes JSON lines to
// stdout; anything else gets the human-friendly console writer.
func New(level string, production bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, production)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, level string, production bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if !production {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "devevent").Logger()
}

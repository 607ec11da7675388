// Package logging builds the zerolog loggers used by the CLI and server.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// New returns a timestamped logger writing to w at the named level. When
// console is set the output is human readable instead of JSON.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), errors.Errorf("parsing log level: %w", err)
		}
		lvl = parsed
	}

	if w == nil {
		w = os.Stderr
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Level picks the effective level name: debug when forced, otherwise the
// configured one.
func Level(debug bool, configured string) string {
	if debug {
		return zerolog.LevelDebugValue
	}
	return configured
}

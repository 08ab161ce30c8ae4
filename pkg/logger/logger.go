package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger = New(os.Stderr, zerolog.InfoLevel)

// New returns a console logger on w with RFC3339 timestamps.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()
}

// Setup parses level, makes the resulting logger the package and zerolog
// global default, and returns it.
func Setup(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger, fmt.Errorf("logger: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger = New(w, lvl)
	log.Logger = logger
	return logger, nil
}

// Errorf logs at error level through the package logger.
func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

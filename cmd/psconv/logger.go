package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-psconv/internal/config"
)

// newLogger builds the diagnostic logger. Logs go to w (stderr in
// production) so they never mix with command output.
// verbose forces debug level, quiet forces error level.
func newLogger(w io.Writer, format, level string, verbose, quiet bool) zerolog.Logger {
	lvl := parseLevel(level)
	switch {
	case quiet:
		lvl = zerolog.ErrorLevel
	case verbose:
		lvl = zerolog.DebugLevel
	}

	out := w
	if !strings.EqualFold(format, config.LogFormatJSON) {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// parseLevel converts a config level name to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

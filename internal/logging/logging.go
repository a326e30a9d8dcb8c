// Package logging configures the node's structured logger. zerolog ships
// in the dependency graph already (pulled in transitively by the
// consensus stack); this package promotes it to a direct import and gives
// every other package a single place to get a configured logger from.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger at the given level ("debug", "info", "warn",
// "error") and format ("console" or "json"), writing to out.
func New(level, format string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var writer io.Writer = out
	if format != "json" {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	logger = logger.Level(parseLevel(level))
	return logger
}

// Default returns a console logger at info level writing to stderr — the
// logger used before a node's configuration has been loaded.
func Default() zerolog.Logger {
	return New("info", "console", os.Stderr)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
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

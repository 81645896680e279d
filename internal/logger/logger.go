package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a colored console
// writer, everything else line-delimited JSON.
func New(serviceName string, development bool, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, serviceName, development, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(out io.Writer, serviceName string, development bool, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if development {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// ParseLevel maps debug/info/warn/error to zerolog levels, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config describes the logging configuration.
type Config struct {
	// Level holds the minimum level to log at.
	Level string

	// Output holds the log destination, which can be "stdout", "stderr",
	// or a file path. Logs are discarded if it is empty.
	Output string
}

// New returns a new logger for the configuration, along with a function
// to close its output.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	nop := func() error { return nil }

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), nop, err
		}
	}

	var output io.Writer
	closer := nop

	switch cfg.Output {
	case "":
		return zerolog.Nop(), nop, nil

	case "stdout":
		output = os.Stdout

	case "stderr":
		output = os.Stderr

	default:
		fd, err := os.OpenFile(filepath.Clean(cfg.Output), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), nop, err
		}

		output, closer = fd, fd.Close
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger(), closer, nil
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ValidLevel returns whether the level name can be parsed.
func ValidLevel(level string) bool {
	if level == "" {
		return true
	}

	_, err := zerolog.ParseLevel(strings.ToLower(level))

	return err == nil
}

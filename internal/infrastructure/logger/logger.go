package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // json, console
	Service string
}

// New creates a zerolog logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a zerolog logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	output := w
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    w != os.Stdout,
		}
	}

	ctx := zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}

	return ctx.Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

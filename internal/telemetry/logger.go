package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	// Level is debug, info, warn or error.
	Level string
	// Format is text, json or logfmt.
	Format string
	// Timestamps adds a time field to every line.
	Timestamps bool
}

// NewLogger builds a slog logger backed by a charmbracelet/log handler.
func NewLogger(w io.Writer, opts LoggerOptions) (*slog.Logger, error) {
	level := charmlog.WarnLevel
	if opts.Level != "" {
		lvl, err := charmlog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = lvl
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(opts.Format) {
	case "", "text":
		formatter = charmlog.TextFormatter
	case "json":
		formatter = charmlog.JSONFormatter
	case "logfmt":
		formatter = charmlog.LogfmtFormatter
	default:
		return nil, fmt.Errorf("log format %q: must be text, json or logfmt", opts.Format)
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamps,
		Prefix:          "redux",
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

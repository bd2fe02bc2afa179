// Package logging configures the structured logger used across the CLI.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	// Debug lowers the level to debug.
	Debug bool

	// JSON switches the formatter to one JSON object per record.
	JSON bool
}

// New creates a structured logger writing to w. Components receive this
// logger by injection; nothing in the repository mutates process-global
// logging state.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	if opts.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

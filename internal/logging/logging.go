// Package logging builds the zerolog logger shared by the server and CLI.
package logging

import (
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

type Options struct {
	Version string
	Level   string
	// JSON selects structured output; otherwise a console writer is used.
	JSON bool
}

// New returns a service logger tagged with appName and version. An unparsable
// level falls back to info.
func New(appName string, opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	logger := httplog.NewLogger(appName, httplog.Options{
		LogLevel: level.String(),
		JSON:     opts.JSON,
		Concise:  true,
		Tags: map[string]string{
			"version": opts.Version,
			"app":     appName,
		},
	})
	zerolog.SetGlobalLevel(level)

	return logger
}
